package facade

import (
	"bytes"
	"testing"

	"github.com/leonard/keyremap/internal/hook"
	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/persistence"
	"github.com/leonard/keyremap/internal/vkey"
)

// The Facade is a process-wide singleton by design (spec §4.D), so these
// subtests share one instance and run in sequence rather than each calling
// Init — matching how cmd/keyremap actually uses it.
func TestFacade_Lifecycle(t *testing.T) {
	backend := hook.NewFakeBackend()
	f := Init(backend, persistence.YAMLCodec{})

	t.Run("InstallHook registers the callback", func(t *testing.T) {
		if err := f.InstallHook(); err != nil {
			t.Fatalf("InstallHook: %v", err)
		}
		if !backend.Installed() {
			t.Fatal("expected the backend to report installed")
		}
	})

	t.Run("initial state has one empty row and clears dirty after first Changed", func(t *testing.T) {
		rows, sel := f.State()
		if len(rows) != 1 || !rows[0].IsEmpty() {
			t.Fatalf("expected a single empty row, got %+v", rows)
		}
		if sel.Idx != -1 {
			t.Fatalf("expected no active selection, got %+v", sel)
		}
		if !f.Changed() {
			t.Fatal("expected dirty to be set after Init")
		}
		if f.Changed() {
			t.Fatal("Changed should clear the dirty flag")
		}
	})

	t.Run("Select then hook events record a mapping", func(t *testing.T) {
		f.Select(0, mapping.Input)
		if !f.MappingSelected() {
			t.Fatal("expected recording to be active")
		}
		if !f.Changed() {
			t.Fatal("Select should raise dirty")
		}

		v := backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Press})
		if v.Kind != hook.Intercept {
			t.Fatalf("expected Intercept while recording, got %+v", v)
		}
		backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Release})
		f.ExitEdit()

		if f.MappingSelected() {
			t.Fatal("expected recording to be inactive after ExitEdit")
		}

		rows, _ := f.State()
		in, ok := rows[0].Get(mapping.Input)
		if !ok || in.Primary() != vkey.A {
			t.Fatalf("expected row 0 input to capture A, got %+v", rows[0])
		}
	})

	t.Run("Select(0, Output) then record B completes the mapping and matches", func(t *testing.T) {
		f.Select(0, mapping.Output)
		backend.Deliver(hook.Event{Key: vkey.B, Kind: hook.Press})
		backend.Deliver(hook.Event{Key: vkey.B, Kind: hook.Release})
		f.ExitEdit()

		v := backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Press})
		if v.Kind != hook.Replace {
			t.Fatalf("expected Replace for a completed A->B mapping, got %+v", v)
		}
		backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Release})
	})

	t.Run("Delete is a guarded no-op while recording", func(t *testing.T) {
		f.Select(1, mapping.Input)
		if f.Delete(0) {
			t.Fatal("Delete must refuse while a recording selection is active")
		}
		f.ExitEdit()
	})

	t.Run("Export then Import round-trips the table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := f.Export(&buf); err != nil {
			t.Fatalf("Export: %v", err)
		}
		if err := f.Import(bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("Import: %v", err)
		}
		rows, _ := f.State()
		in, ok := rows[0].Get(mapping.Input)
		if !ok || in.Primary() != vkey.A {
			t.Fatalf("expected the A->B mapping to survive a round trip, got %+v", rows[0])
		}
	})

	t.Run("SetEnabled(false) bypasses the engine entirely", func(t *testing.T) {
		f.SetEnabled(false)
		v := backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Press})
		if v.Kind != hook.Allow {
			t.Fatalf("expected Allow while disabled, got %+v", v)
		}
		backend.Deliver(hook.Event{Key: vkey.A, Kind: hook.Release})
		f.SetEnabled(true)
	})

	t.Run("DeleteHook uninstalls the backend", func(t *testing.T) {
		if err := f.DeleteHook(); err != nil {
			t.Fatalf("DeleteHook: %v", err)
		}
		if backend.Installed() {
			t.Fatal("expected the backend to report uninstalled")
		}
	})
}
