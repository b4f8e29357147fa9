// Package consoleui is a headless terminal dashboard alternative to the
// tray: it redraws on a fixed 200ms tick and on terminal events, rendering
// the mapping table, recording selection, enabled state and current mapping
// file with gdamore/tcell. It does not consume the Facade's dirty flag and
// does not show the shadow keyboard. It is a
// second external collaborator against the Facade, never a mapping editor —
// the same boundary the tray observes.
package consoleui

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell"
	"golang.org/x/term"

	"github.com/leonard/keyremap/internal/facade"
	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/vkey"
)

// Available reports whether stdout is an interactive terminal — cmd/keyremap
// uses this to decide whether the console dashboard is worth starting at all
// instead of falling back to the tray or to plain logging.
func Available() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Dashboard renders Facade state to a tcell screen until Stop is called or
// the user presses Esc/Ctrl-C.
type Dashboard struct {
	screen tcell.Screen
	facade *facade.Facade
	logger *slog.Logger
	quit   chan struct{}
}

// New builds a Dashboard over the given screen. Callers typically pass the
// result of tcell.NewScreen().
func New(screen tcell.Screen, f *facade.Facade, logger *slog.Logger) *Dashboard {
	return &Dashboard{screen: screen, facade: f, logger: logger, quit: make(chan struct{})}
}

// Run initializes the screen and blocks, redrawing on a tick and on key
// events, until Stop is called or Esc/Ctrl-C is pressed.
func (d *Dashboard) Run() error {
	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer d.screen.Fini()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	d.draw()
	for {
		select {
		case <-d.quit:
			return nil
		case <-ticker.C:
			d.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
			case *tcell.EventResize:
				d.screen.Sync()
			}
			d.draw()
		}
	}
}

// Stop asks Run to return.
func (d *Dashboard) Stop() {
	close(d.quit)
}

func (d *Dashboard) draw() {
	d.screen.Clear()
	style := tcell.StyleDefault

	row := 0
	d.puts(0, row, style.Bold(true), "keyremap — press Esc to exit")
	row += 2

	rows, sel := d.facade.State()
	for i, m := range rows {
		marker := "  "
		if sel.Idx == i {
			side := "input"
			if sel.Side == mapping.Output {
				side = "output"
			}
			marker = "*" + side[:1]
		}
		d.puts(0, row, style, fmt.Sprintf("%s [%d] %s -> %s", marker, i, strokeLabel(m, mapping.Input), strokeLabel(m, mapping.Output)))
		row++
	}
	row++

	status := "enabled"
	if !d.facade.Enabled() {
		status = "disabled"
	}
	d.puts(0, row, style, fmt.Sprintf("status: %s   file: %s", status, d.facade.CurrentLayoutName()))

	d.screen.Show()
}

func strokeLabel(m mapping.Mapping, side mapping.Side) string {
	s, ok := m.Get(side)
	if !ok {
		return "_"
	}
	label := vkey.Name(s.Primary())
	for _, mod := range s.Modifiers() {
		label = vkey.Name(mod) + "+" + label
	}
	return label
}

func (d *Dashboard) puts(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		d.screen.SetCell(x+i, y, style, r)
	}
}
