package datapath

import (
	"encoding/json"
	"fmt"
)

// defaultFormat renders composite values (maps, slices) compactly as JSON so
// cells never show Go syntax like map[a:1]. Unmarshalable values fall back
// to fmt.
func defaultFormat(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
