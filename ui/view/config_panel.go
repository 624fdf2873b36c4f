package view

import (
	"log/slog"
	"strings"

	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	fields    []model.FormField
	applyBtn  *ButtonWidget
	statusLbl *LabelWidget
	widgets   map[string]*TextWidget // keyed by field id
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, fields: model.ConfigFields(), widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	// two label/entry pairs per grid row
	for i, f := range v.fields {
		col := (i % 2) * 2
		lbl := Label(Txt(f.Label), Anchor("w"))
		Grid(lbl, Row(row), Column(col), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(col+1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", f.Get(v.cfg))
		v.widgets[f.ID] = w
		if i%2 == 1 {
			row++
		}
	}
	if len(v.fields)%2 == 1 {
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.statusLbl = Label(Txt(""), Anchor("w"))
	Grid(v.statusLbl, Row(row), Column(2), Columnspan(3), Sticky("w"), Padx("0.4m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.Join(w.Get("1.0", END), "")
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	values := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		values[id] = v.text(w)
	}
	next, err := model.ApplyForm(v.cfg, v.fields, values)
	if err != nil {
		v.status("Invalid: " + firstLine(err.Error()))
		if v.logger != nil {
			v.logger.Warn("config rejected", "error", err)
		}
		return
	}
	*v.cfg = *next
	if err := v.cfg.Save(v.cfgPath); err != nil {
		v.status("Save failed")
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		return
	}
	v.status("Saved")
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
}

func (v *configPanel) status(s string) {
	if v.statusLbl != nil {
		v.statusLbl.Configure(Txt(s))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
