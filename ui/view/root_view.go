package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     RegionPreview

	// Widgets
	StateLabel *TLabelWidget
	startBtn   *TButtonWidget
}

// Handlers are the user actions the root view exposes.
type Handlers struct {
	OnToggleRun func()
	OnPreview   func()
	OnExit      func()
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Rows 0-1: session stats and catch summary, state label, buttons frame
	rv.Session = NewSessionStats(0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.startBtn = TButton(Txt("Start"), Style(theme.StylePrimaryButton), Command(h.OnToggleRun))
	Grid(rv.startBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	previewBtn := TButton(Txt("Preview Regions"), Command(h.OnPreview))
	Grid(previewBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(h.OnExit))
	Grid(exitBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	endRow := rv.ConfigPanel.Build(2)
	rv.Preview = NewRegionPreview(endRow)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// ConfigEditable toggles config panel editability. The panel is locked while
// the bot runs, so the start button doubles as the stop button.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv == nil {
		return
	}
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
	if rv.startBtn != nil {
		if enabled {
			rv.startBtn.Configure(Txt("Start"))
		} else {
			rv.startBtn.Configure(Txt("Stop"))
		}
	}
}

// SetSession updates both session and total run durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

// SetCatches updates the catch summary.
func (rv *RootView) SetCatches(summary string) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetCatches(summary)
	}
}

// UpdatePreview proxies to the region preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

// PreviewReset clears the region preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.Reset()
	}
}
