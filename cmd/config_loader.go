package cmd

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/pkg/settings"
	"github.com/oakwood-commons/gridkit/pkg/termdriver"
)

// Config is the on-disk YAML configuration. All fields are optional;
// pointers distinguish "unset" from zero values so flags and schema
// defaults can fill the gaps.
type Config struct {
	// Theme names the default theme from Themes.
	Theme string `yaml:"theme,omitempty"`

	Themes map[string]ThemeConfig `yaml:"themes,omitempty"`

	NoColor  *bool `yaml:"noColor,omitempty"`
	Width    *int  `yaml:"width,omitempty"`
	PageSize *int  `yaml:"pageSize,omitempty"`
}

// ThemeConfig is a named color palette. Values are anything lipgloss
// understands: ANSI-256 numbers ("81") or hex ("#5fd7ff"). Empty fields fall
// back to the built-in default palette.
type ThemeConfig struct {
	HeaderFG   string `yaml:"headerFg,omitempty"`
	HeaderBG   string `yaml:"headerBg,omitempty"`
	Value      string `yaml:"value,omitempty"`
	SelectedFG string `yaml:"selectedFg,omitempty"`
	SelectedBG string `yaml:"selectedBg,omitempty"`
	Separator  string `yaml:"separator,omitempty"`
	Error      string `yaml:"error,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Muted      string `yaml:"muted,omitempty"`
}

// resolveConfigPath returns the explicit path if set, otherwise the XDG path
// ($XDG_CONFIG_HOME/gridkit/config.yaml) or ~/.config/gridkit/config.yaml if
// present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// loadMergedConfig reads and decodes the config file. A missing path yields
// the zero config, not an error; an unreadable or malformed file is an error
// because the user named it explicitly or placed it at the XDG location.
func loadMergedConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveTheme picks the palette to render with. An explicitly requested
// theme that does not exist is an error; an unset or defaulted name falls
// back to the built-in palette.
func resolveTheme(cfg Config, name string, explicit bool) (termdriver.Theme, error) {
	if name == "" {
		name = cfg.Theme
	}
	if name == "" {
		return termdriver.Theme{}, nil
	}
	tc, ok := cfg.Themes[name]
	if !ok {
		if explicit {
			return termdriver.Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(themeNames(cfg), ", "))
		}
		return termdriver.Theme{}, nil
	}
	return tc.toTheme(), nil
}

func themeNames(cfg Config) []string {
	out := make([]string, 0, len(cfg.Themes))
	for k := range cfg.Themes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (tc ThemeConfig) toTheme() termdriver.Theme {
	var t termdriver.Theme
	set := func(dst *color.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&t.HeaderFG, tc.HeaderFG)
	set(&t.HeaderBG, tc.HeaderBG)
	set(&t.ValueColor, tc.Value)
	set(&t.SelectedFG, tc.SelectedFG)
	set(&t.SelectedBG, tc.SelectedBG)
	set(&t.SeparatorColor, tc.Separator)
	set(&t.ErrorColor, tc.Error)
	set(&t.AccentColor, tc.Accent)
	set(&t.MutedColor, tc.Muted)
	return t
}
