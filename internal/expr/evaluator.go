// Package expr evaluates CEL expressions against table records. The engine
// uses it for subtable `when` predicates and for column filter expressions;
// the record under test is bound to the variable "_".
package expr

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Evaluator compiles and evaluates CEL expressions. Compiled programs are
// cached per expression string, so re-evaluating the same predicate across
// many rows compiles once.
type Evaluator struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator creates an evaluator with the standard extension libraries.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env, programs: make(map[string]cel.Program)}, nil
}

func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.programs[expr]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	e.programs[expr] = prg
	return prg, nil
}

// Evaluate evaluates a CEL expression against a record bound to "_".
// Example: `_.status == "open"` or `_.children.size() > 0`.
func (e *Evaluator) Evaluate(expr string, record interface{}) (interface{}, error) {
	prg, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	result, _, err := prg.Eval(map[string]interface{}{"_": record})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return toGo(result), nil
}

// EvalBool evaluates a predicate expression. Non-boolean results and
// evaluation errors report false with the error; callers decide whether a
// failing predicate degrades or is ignored.
func (e *Evaluator) EvalBool(expr string, record interface{}) (bool, error) {
	v, err := e.Evaluate(expr, record)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("predicate %q returned %T, want bool", expr, v)
	}
	return b, nil
}

// toGo converts CEL result types to plain Go values.
func toGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	if valuer, ok := val.(interface{ Value() interface{} }); ok {
		inner := valuer.Value()
		switch iv := inner.(type) {
		case []ref.Val:
			out := make([]interface{}, len(iv))
			for i, el := range iv {
				out[i] = toGo(el)
			}
			return out
		case map[ref.Val]ref.Val:
			out := make(map[string]interface{}, len(iv))
			for k, v := range iv {
				out[fmt.Sprintf("%v", toGo(k))] = toGo(v)
			}
			return out
		default:
			return inner
		}
	}
	return val
}
