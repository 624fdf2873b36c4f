package theme

// Palette and ttk styles for the control window. InitStyles activates the
// base theme and configures the semantic styles the views refer to.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette holds resolved colors for one mode.
type Palette struct {
	AppBg   string
	Surface string
	Primary string
	Danger  string
	Accent  string
	Text    string
}

var (
	light = Palette{AppBg: "#f7f9fb", Surface: "#ffffff", Primary: "#2563eb", Danger: "#dc2626", Accent: "#0e9f6e", Text: "#1e293b"}
	dark  = Palette{AppBg: "#0f172a", Surface: "#1e293b", Primary: "#3b82f6", Danger: "#ef4444", Accent: "#10b981", Text: "#f1f5f9"}
)

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
)

var darkMode bool

// Current returns the palette of the active mode.
func Current() Palette {
	if darkMode {
		return dark
	}
	return light
}

// InitStyles applies the styles for the requested mode.
func InitStyles(useDark bool) {
	darkMode = useDark
	p := Current()
	base := "azure light"
	if useDark {
		base = "azure dark"
	}
	_ = ActivateTheme(base)
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton, Background(p.Primary), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleDangerButton, Background(p.Danger), Foreground("white"), Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleStateLabel, Foreground("white"), Background(p.Accent), Padding("4p 2p"), Borderwidth(1), Relief("groove"))
}
