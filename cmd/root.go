// Package cmd implements the gridkit command line interface: rendering a
// schema-driven table to the terminal, browsing it interactively, and
// generating schema documentation.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/gridkit/internal/termui"
	"github.com/oakwood-commons/gridkit/pkg/engine"
	"github.com/oakwood-commons/gridkit/pkg/loader"
	"github.com/oakwood-commons/gridkit/pkg/logger"
	"github.com/oakwood-commons/gridkit/pkg/schema"
	"github.com/oakwood-commons/gridkit/pkg/settings"
	"github.com/oakwood-commons/gridkit/pkg/termdriver"
)

var (
	dataFile    string
	interactive bool
	noColor     bool
	outputWidth int
	pageSize    int
	themeName   string
	configFile  string
	debug       bool
	strictFlag  bool

	rootCtx = context.Background()
)

// errNoSchema is returned when no schema argument is provided and help should
// be shown instead of an error trace.
var errNoSchema = errors.New("no schema provided")

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " <schema-file>",
	Short: "Render schema-driven tables in the terminal",
	Long: `gridkit renders a table from a declarative schema (JSON or YAML) and a
data file. Schemas describe columns, toolbar elements, pagination,
selection, and nested subtables; gridkit resolves them into a render
tree and lays it out for the terminal.

Data is read from --data or stdin and may be JSON, NDJSON, or YAML.`,
	Example: "\n  gridkit orders.schema.yaml --data orders.json\n  cat orders.ndjson | gridkit orders.schema.yaml\n  gridkit orders.schema.yaml --data orders.json -i\n",
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		params := cliParams()
		lgr := logger.Get(params.MinLogLevel)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), params)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runView(cmd, args)
		if errors.Is(err, errNoSchema) {
			return cmd.Help()
		}
		return err
	},
}

// cliParams folds the parsed flag values into one per-run settings object.
func cliParams() *settings.Run {
	params := settings.NewCliParams()
	if debug {
		params.MinLogLevel = -1
	}
	params.NoColor = noColor
	params.DataPath = dataFile
	return params
}

func runView(cmd *cobra.Command, args []string) error {
	lgr := logger.FromContext(rootCtx)
	run, ok := settings.FromContext(rootCtx)
	if !ok {
		run = cliParams()
	}
	cfg, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}

	doc, issues, err := loadSchema(args)
	if err != nil {
		return err
	}
	run.SchemaPath = args[0]
	lgr.V(1).Info("rendering table", "schema", run.SchemaPath, "data", run.DataPath, "interactive", interactive)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "schema warning: %s\n", iss)
	}
	if strictFlag && len(issues) > 0 {
		return fmt.Errorf("schema has %d issue(s) and --strict is set", len(issues))
	}

	rows, err := loadData(cmd.InOrStdin(), run.DataPath)
	if err != nil {
		return err
	}

	applyOverrides(doc, cfg)

	theme, err := resolveTheme(cfg, themeName, cmd.Flags().Changed("theme"))
	if err != nil {
		return err
	}
	drv := termdriver.New()

	tbl, err := engine.New(engine.Options{
		Schema: doc,
		Data:   rows,
		Driver: drv,
		Logger: *lgr,
	})
	if err != nil {
		return err
	}

	opts := termdriver.Options{
		Width:   resolvedWidth(cfg),
		NoColor: resolvedNoColor(cfg, run),
		Theme:   theme,
	}
	if interactive {
		return termui.Run(tbl, termui.Options{
			NoColor: opts.NoColor,
			Theme:   opts.Theme,
			Width:   opts.Width,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), termdriver.RenderTable(tbl.Render(), opts))
	return nil
}

// loadSchema reads, parses, and validates the schema named by the positional
// argument. Non-fatal issues come back for reporting; the document is already
// normalized.
func loadSchema(args []string) (*schema.Document, []schema.Issue, error) {
	if len(args) == 0 {
		return nil, nil, errNoSchema
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, nil, err
	}
	doc, err := schema.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", args[0], err)
	}
	res, err := schema.Validate(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return res.Doc, res.Issues, nil
}

// loadData reads records from the configured data path, or from stdin when
// it is not a TTY. Missing data is not an error: schemas can be previewed
// empty.
func loadData(stdin io.Reader, path string) ([]map[string]interface{}, error) {
	if path != "" {
		return loader.LoadFile(path)
	}
	if f, ok := stdin.(*os.File); ok {
		st, err := f.Stat()
		if err != nil || st.Mode()&os.ModeCharDevice != 0 {
			return nil, nil
		}
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	return loader.Load(string(raw))
}

// applyOverrides folds config and flag values into the schema document before
// the engine sees it. Flags beat config, config beats schema.
func applyOverrides(doc *schema.Document, cfg Config) {
	size := 0
	if cfg.PageSize != nil {
		size = *cfg.PageSize
	}
	if pageSize > 0 {
		size = pageSize
	}
	if size > 0 {
		if doc.Pagination == nil {
			doc.Pagination = &schema.Pagination{}
		}
		doc.Pagination.PageSize = size
	}
}

func resolvedWidth(cfg Config) int {
	if outputWidth > 0 {
		return outputWidth
	}
	if cfg.Width != nil {
		return *cfg.Width
	}
	return 0
}

func resolvedNoColor(cfg Config, run *settings.Run) bool {
	if run.NoColor {
		return true
	}
	if cfg.NoColor != nil {
		return *cfg.NoColor
	}
	return os.Getenv("NO_COLOR") != ""
}

func init() {
	rootCmd.Flags().StringVarP(&dataFile, "data", "d", "", "path to a data file (JSON, NDJSON, or YAML); defaults to stdin")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the table in an interactive TUI")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().IntVar(&outputWidth, "width", 0, "output width in columns (0 = detect)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "override the schema's page size")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name from the config file")
	rootCmd.Flags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&strictFlag, "strict", false, "fail on schema warnings instead of degrading")

	rootCmd.Flags().SetNormalizeFunc(normalizeFlagName)
}

// normalizeFlagName accepts common alternate spellings for flag names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "no-colour", "nocolor":
		name = "no-color"
	case "pagesize":
		name = "page-size"
	}
	return pflag.NormalizedName(name)
}

func Execute() error {
	return rootCmd.Execute()
}
