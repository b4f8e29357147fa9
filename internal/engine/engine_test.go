package engine

import (
	"testing"

	"github.com/leonard/keyremap/internal/hook"
	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/shadow"
	"github.com/leonard/keyremap/internal/vkey"
)

func press(k vkey.Code) hook.Event  { return hook.Event{Key: k, Kind: hook.Press} }
func release(k vkey.Code) hook.Event { return hook.Event{Key: k, Kind: hook.Release} }

// scenario 1 (spec §8): a plain remap with no modifiers involved emits only
// the primary at the triggering event's own polarity; the key-up half of
// the tap arrives on the later, separately-classified release event, since
// Classify's synthesis algorithm appends a modifier-restoring tail only for
// keys synthesized *before* the primary, and here there are none.
func TestHandle_PlainRemap(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	tbl.Update(0, mapping.Input, mapping.NewStroke(vkey.A, nil))
	tbl.Update(0, mapping.Output, mapping.NewStroke(vkey.B, nil))
	e := New(sh, tbl)

	v, dirty := e.Handle(press(vkey.A))
	if dirty {
		t.Fatal("plain remap should never mark dirty")
	}
	if v.Kind != hook.Replace || len(v.Sequence) != 1 ||
		v.Sequence[0] != (hook.SyntheticEvent{Key: vkey.B, Kind: hook.Press}) {
		t.Fatalf("unexpected press verdict: %+v", v)
	}

	v, _ = e.Handle(release(vkey.A))
	if v.Kind != hook.Replace || len(v.Sequence) != 1 ||
		v.Sequence[0] != (hook.SyntheticEvent{Key: vkey.B, Kind: hook.Release}) {
		t.Fatalf("unexpected release verdict: %+v", v)
	}
}

// scenario 2 (spec §8): Shift+A -> C. Pressing LShift is plain Allow and
// populates the shadow; pressing A then matches against the mapping's
// generic Shift requirement (Contains treats sided LShift as satisfying a
// generic query), releases the physically-held LShift, presses nothing
// (wanted mods is empty), emits C, then re-presses LShift as the inverse
// tail so OS modifier state survives the substitution.
func TestHandle_ModifiedInput(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	tbl.Update(0, mapping.Input, mapping.NewStroke(vkey.A, []vkey.Code{vkey.Shift}))
	tbl.Update(0, mapping.Output, mapping.NewStroke(vkey.C, nil))
	e := New(sh, tbl)

	v, _ := e.Handle(press(vkey.LShift))
	if v.Kind != hook.Allow {
		t.Fatalf("plain modifier press should Allow, got %+v", v)
	}

	v, _ = e.Handle(press(vkey.A))
	want := []hook.SyntheticEvent{
		{Key: vkey.LShift, Kind: hook.Release},
		{Key: vkey.C, Kind: hook.Press},
		{Key: vkey.LShift, Kind: hook.Press},
	}
	if v.Kind != hook.Replace || !eqSeq(v.Sequence, want) {
		t.Fatalf("got %+v want %+v", v.Sequence, want)
	}
}

// scenario 3: an input-only mapping (no output side) suppresses the key
// with no substitution.
func TestHandle_InputOnlyMapping_Intercepts(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	tbl.Update(0, mapping.Input, mapping.NewStroke(vkey.F1, nil))
	e := New(sh, tbl)

	v, _ := e.Handle(press(vkey.F1))
	if v.Kind != hook.Intercept || len(v.Sequence) != 0 {
		t.Fatalf("expected bare Intercept, got %+v", v)
	}
}

// scenario 4 (spec §8): record then match. Select(0, Input), press Ctrl+K,
// select(0, Output), press L, exit edit, then Ctrl+K should replace with L.
func TestHandle_RecordThenMatch(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	e := New(sh, tbl)

	e.Select(0, mapping.Input)
	e.Handle(press(vkey.Control))
	v, dirty := e.Handle(press(vkey.K))
	if v.Kind != hook.Intercept {
		t.Fatalf("recording press should Intercept, got %+v", v)
	}
	if !dirty {
		t.Fatal("recording capture should mark dirty")
	}
	e.Handle(release(vkey.K))
	e.Handle(release(vkey.Control))

	in, ok := tbl.At(0).Get(mapping.Input)
	if !ok || in.Primary() != vkey.K || !in.HasModifier(vkey.Control) {
		t.Fatalf("captured input stroke wrong: %+v", in)
	}

	e.Select(0, mapping.Output)
	e.Handle(press(vkey.L))
	e.Handle(release(vkey.L))
	e.ExitEdit()

	out, ok := tbl.At(0).Get(mapping.Output)
	if !ok || out.Primary() != vkey.L {
		t.Fatalf("captured output stroke wrong: %+v", out)
	}

	e.Handle(press(vkey.Control))
	v, _ = e.Handle(press(vkey.K))
	if v.Kind != hook.Replace || len(v.Sequence) == 0 {
		t.Fatalf("expected Replace after recording, got %+v", v)
	}
	foundL := false
	for _, ev := range v.Sequence {
		if ev.Key == vkey.L && ev.Kind == hook.Press {
			foundL = true
		}
	}
	if !foundL {
		t.Fatalf("expected an L-down in sequence %+v", v.Sequence)
	}
}

// recording swallows releases without capturing them.
func TestHandle_RecordingSwallowsReleaseWithoutCapture(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	e := New(sh, tbl)

	e.Select(0, mapping.Input)
	v, dirty := e.Handle(release(vkey.A))
	if v.Kind != hook.Intercept {
		t.Fatalf("release while recording should Intercept, got %+v", v)
	}
	if dirty {
		t.Fatal("a swallowed release must never capture")
	}
}

// injected events always Allow and never reach classification or mutate the
// shadow (spec §4.C "Event filtering").
func TestHandle_InjectedEventsBypassEverything(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	tbl.Update(0, mapping.Input, mapping.NewStroke(vkey.A, nil))
	tbl.Update(0, mapping.Output, mapping.NewStroke(vkey.B, nil))
	e := New(sh, tbl)

	v, dirty := e.Handle(hook.Event{Key: vkey.A, Kind: hook.Press, Injected: true})
	if v.Kind != hook.Allow || dirty {
		t.Fatalf("injected event must Allow and never mark dirty, got %+v dirty=%v", v, dirty)
	}
	if sh.Contains(vkey.A) {
		t.Fatal("injected press must not mutate the shadow")
	}
}

// Classify must not mutate the table itself; only Handle applies a Capture.
func TestClassify_DoesNotMutateTable(t *testing.T) {
	sh := shadow.New()
	tbl := mapping.NewTable()
	rec := RecordingState{Active: true, Idx: 0, Side: mapping.Input}

	before := tbl.Snapshot()
	_, capture := Classify(sh, tbl, rec, press(vkey.A))
	after := tbl.Snapshot()

	if capture == nil {
		t.Fatal("expected a capture for a recording press")
	}
	if len(before) != len(after) || !before[0].IsEmpty() || !after[0].IsEmpty() {
		t.Fatal("Classify must not mutate the table; caller applies the Capture")
	}
}

func eqSeq(a, b []hook.SyntheticEvent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
