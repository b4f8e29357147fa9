// Package facade implements the Control Facade (spec §4.D): the
// process-wide singleton that owns the Shadow, Mapping Table and recording
// state behind one mutex, and is the only thing the tray and console front
// ends are allowed to call into.
package facade

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/leonard/keyremap/internal/engine"
	"github.com/leonard/keyremap/internal/hook"
	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/persistence"
	"github.com/leonard/keyremap/internal/shadow"
)

// Facade is the mutex-guarded process-wide state. Construct it with Init;
// every exported method is safe for concurrent use by the hook thread and
// any number of UI goroutines.
type Facade struct {
	mu sync.Mutex

	shadow *shadow.Keyboard
	table  *mapping.Table
	engine *engine.Engine

	backend hook.Backend
	codec   persistence.Codec

	path    string
	dirty   bool
	enabled bool
}

var (
	once     sync.Once
	instance *Facade
)

// Init creates the process-wide Facade exactly once; subsequent calls are
// no-ops and return the original instance. cmd/keyremap calls this at
// startup with the real Windows hook.Backend and persistence.YAMLCodec;
// tests call it with hook.NewFakeBackend() instead.
func Init(backend hook.Backend, codec persistence.Codec) *Facade {
	once.Do(func() {
		sh := shadow.New()
		tbl := mapping.NewTable()
		instance = &Facade{
			shadow:  sh,
			table:   tbl,
			engine:  engine.New(sh, tbl),
			backend: backend,
			codec:   codec,
			dirty:   true,
			enabled: true,
		}
	})
	return instance
}

// Get returns the singleton created by Init. It panics if called first —
// the Facade has exactly one process-wide owner and every caller besides
// cmd/keyremap's startup path should reach it through Get.
func Get() *Facade {
	if instance == nil {
		panic("facade: Get called before Init")
	}
	return instance
}

// InstallHook registers the keyboard hook. Hook installation failure is
// fatal at startup (spec §4.C "Failure semantics") — the caller logs it and
// exits.
func (f *Facade) InstallHook() error {
	if err := f.backend.Install(f.handleEvent); err != nil {
		return fmt.Errorf("installing keyboard hook: %w", err)
	}
	return nil
}

// DeleteHook uninstalls the keyboard hook during shutdown.
func (f *Facade) DeleteHook() error {
	if err := f.backend.Uninstall(); err != nil {
		return fmt.Errorf("uninstalling keyboard hook: %w", err)
	}
	return nil
}

// handleEvent is the hook.HookProc registered with the backend. It computes
// the verdict under the mutex and returns before any injection happens —
// the backend performs Inject itself, after this call returns, so synthetic
// injection never happens while the mutex is held (spec §5).
func (f *Facade) handleEvent(ev hook.Event) hook.Verdict {
	f.mu.Lock()
	if !f.enabled {
		f.mu.Unlock()
		return hook.Verdict{Kind: hook.Allow}
	}
	verdict, dirty := f.engine.Handle(ev)
	if dirty {
		f.dirty = true
	}
	f.mu.Unlock()
	return verdict
}

// SetEnabled toggles whether the engine remaps events at all; while
// disabled every event is Allowed untouched. This is the tray's "Enabled"
// checkbox (SPEC_FULL.md §10) — not named in spec.md itself, but kept from
// the teacher's handler.SetEnabled since the non-goals never exclude it.
func (f *Facade) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
	f.dirty = true
}

// Enabled reports the current toggle state.
func (f *Facade) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Select enters recording mode for (idx, side).
func (f *Facade) Select(idx int, side mapping.Side) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engine.Select(idx, side)
	f.dirty = true
}

// ExitEdit leaves recording mode.
func (f *Facade) ExitEdit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engine.ExitEdit()
	f.dirty = true
}

// Delete removes the mapping row at idx. It is a guarded no-op while a
// recording selection is active (spec §8 scenario 5) and for an
// out-of-range idx (spec §4.C "Failure semantics" — logged at Warn here,
// not an error surface).
func (f *Facade) Delete(idx int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.engine.Recording().Active {
		return false
	}
	if !f.table.Delete(idx) {
		slog.Warn("delete: mapping index out of range", "idx", idx, "rows", f.table.Len())
		return false
	}
	f.table.EnsureTrailingEmpty()
	f.dirty = true
	return true
}

// CurrentPath returns the path of the last imported or exported mapping
// file, or "" if none yet.
func (f *Facade) CurrentPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// CurrentLayoutName returns the base name of CurrentPath, for display.
func (f *Facade) CurrentLayoutName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.path == "" {
		return ""
	}
	return filepath.Base(f.path)
}

// Import decodes r with the facade's codec and replaces the mapping table
// wholesale.
func (f *Facade) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading mapping data: %w", err)
	}
	records, err := f.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding mapping data: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.table.ReplaceAll(mapping.TableFromRecords(records))
	f.dirty = true
	return nil
}

// ImportFile opens path and imports it, recording path as CurrentPath on
// success.
func (f *Facade) ImportFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening mapping file %s: %w", path, err)
	}
	defer file.Close()

	if err := f.Import(file); err != nil {
		return err
	}

	f.mu.Lock()
	f.path = path
	f.mu.Unlock()
	return nil
}

// Export encodes the current mapping table with the facade's codec and
// writes it to w.
func (f *Facade) Export(w io.Writer) error {
	f.mu.Lock()
	records := mapping.RecordsFromTable(f.table)
	f.mu.Unlock()

	data, err := f.codec.Encode(records)
	if err != nil {
		return fmt.Errorf("encoding mapping data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing mapping data: %w", err)
	}
	return nil
}

// ExportFile creates (or truncates) path and exports to it, recording path
// as CurrentPath on success.
func (f *Facade) ExportFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mapping file %s: %w", path, err)
	}
	defer file.Close()

	if err := f.Export(file); err != nil {
		return err
	}

	f.mu.Lock()
	f.path = path
	f.mu.Unlock()
	return nil
}

// Changed reports and clears the dirty flag — the UI's signal to refresh
// (spec §3 "Lifecycle").
func (f *Facade) Changed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.dirty
	f.dirty = false
	return d
}

// Selection describes the active recording target, or reports Idx == -1 if
// recording is not active.
type Selection struct {
	Idx  int
	Side mapping.Side
}

// State returns a read-only snapshot of the mapping rows and current
// recording selection, for UI rendering. The rows are copies taken under the
// mutex, so callers can keep and render them without holding the lock.
func (f *Facade) State() ([]mapping.Mapping, Selection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.table.Snapshot()
	rec := f.engine.Recording()
	if !rec.Active {
		return rows, Selection{Idx: -1}
	}
	return rows, Selection{Idx: rec.Idx, Side: rec.Side}
}

// MappingSelected reports whether a recording selection is active.
func (f *Facade) MappingSelected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.engine.Recording().Active
}
