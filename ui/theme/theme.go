package theme

// Palette and ttk style setup for the labeler window.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PaletteSnapshot holds the resolved colors of one mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
}

var (
	light = PaletteSnapshot{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Text:      "#1e293b",
		TextMuted: "#64748b",
	}
	dark = PaletteSnapshot{
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
	}
)

// Style names used with Style(...).
const (
	StyleDangerButton = "danger.TButton"
	StyleStateLabel   = "state.TLabel"
	StyleHintLabel    = "hint.TLabel"
)

// PaletteFor returns the palette of the requested mode.
func PaletteFor(darkMode bool) PaletteSnapshot {
	if darkMode {
		return dark
	}
	return light
}

// Init activates the base theme and configures the labeler styles.
func Init(darkMode bool) {
	p := PaletteFor(darkMode)
	if darkMode {
		_ = ActivateTheme("azure dark")
	} else {
		_ = ActivateTheme("azure light")
	}
	App.Configure(Background(p.AppBg))

	StyleConfigure(StyleDangerButton,
		Background(p.Danger),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(p.Accent),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleHintLabel,
		Foreground(p.TextMuted),
		Background(p.Surface),
		Padding("2p 1p"),
	)
}
