package termdriver

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors used for table output. Host apps can supply their
// own palette; zero-valued fields fall back to the defaults.
type Theme struct {
	HeaderFG       color.Color // header row text
	HeaderBG       color.Color // header row background
	ValueColor     color.Color // body cell text
	SelectedFG     color.Color // selected row text
	SelectedBG     color.Color // selected row background
	SeparatorColor color.Color // separator lines
	ErrorColor     color.Color // inline error markers
	AccentColor    color.Color // interactive affordances (buttons, pager)
	MutedColor     color.Color // footer and secondary text
}

// DefaultTheme returns the standard dark palette.
func DefaultTheme() Theme {
	return Theme{
		HeaderFG:       lipgloss.Color("81"),  // cyan headers
		HeaderBG:       lipgloss.Color("236"), // charcoal header background
		ValueColor:     lipgloss.Color("246"), // muted gray values
		SelectedFG:     lipgloss.Color("250"),
		SelectedBG:     lipgloss.Color("24"), // deep teal selection
		SeparatorColor: lipgloss.Color("238"),
		ErrorColor:     lipgloss.Color("203"), // softer red
		AccentColor:    lipgloss.Color("114"), // mint accents
		MutedColor:     lipgloss.Color("244"),
	}
}

// styles is the compiled form of a theme.
type styles struct {
	header    lipgloss.Style
	value     lipgloss.Style
	selected  lipgloss.Style
	separator lipgloss.Style
	err       lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
}

func compile(t Theme) styles {
	def := DefaultTheme()
	pick := func(c, fallback color.Color) color.Color {
		if c == nil {
			return fallback
		}
		return c
	}
	return styles{
		header: lipgloss.NewStyle().Bold(true).
			Foreground(pick(t.HeaderFG, def.HeaderFG)).
			Background(pick(t.HeaderBG, def.HeaderBG)),
		value: lipgloss.NewStyle().Foreground(pick(t.ValueColor, def.ValueColor)),
		selected: lipgloss.NewStyle().
			Foreground(pick(t.SelectedFG, def.SelectedFG)).
			Background(pick(t.SelectedBG, def.SelectedBG)),
		separator: lipgloss.NewStyle().Foreground(pick(t.SeparatorColor, def.SeparatorColor)),
		err:       lipgloss.NewStyle().Foreground(pick(t.ErrorColor, def.ErrorColor)),
		accent:    lipgloss.NewStyle().Foreground(pick(t.AccentColor, def.AccentColor)),
		muted:     lipgloss.NewStyle().Foreground(pick(t.MutedColor, def.MutedColor)),
	}
}
