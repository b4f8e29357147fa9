// Package engine implements the Interception Engine (spec §4.C): the hook
// callback's central state machine. Classify is a pure function of its
// arguments (Testable Property 5); Engine.Handle is the stateful wrapper that
// performs the shadow-update ordering around it and applies captures made
// during recording.
package engine

import (
	"sort"

	"github.com/leonard/keyremap/internal/hook"
	"github.com/leonard/keyremap/internal/mapping"
	"github.com/leonard/keyremap/internal/shadow"
	"github.com/leonard/keyremap/internal/vkey"
)

// RecordingState mirrors the Idle/Recording{idx,side} machine.
type RecordingState struct {
	Active bool
	Idx    int
	Side   mapping.Side
}

// Capture is what Classify returns when a recording press finalizes a
// mapping side. Handle applies it to the table; Classify itself never
// mutates anything, keeping it the pure function Testable Property 5 names.
type Capture struct {
	Idx    int
	Side   mapping.Side
	Stroke mapping.Stroke
}

// heldSnapshot is satisfied by *shadow.Keyboard; kept local so this package
// doesn't need shadow for anything beyond the concrete type passed in by
// callers (Handle takes *shadow.Keyboard directly; Classify only needs the
// read-only surface mapping.Table.Lookup and synthesize already require).
type heldSnapshot interface {
	Contains(key vkey.Code) bool
	Snapshot() []vkey.Code
}

// Classify is the pure verdict function (spec §4.C step 2, Testable
// Property 5): identical (shadow, table, recording, event) always yields an
// identical (Verdict, Capture).
func Classify(sh heldSnapshot, table *mapping.Table, rec RecordingState, ev hook.Event) (hook.Verdict, *Capture) {
	if rec.Active {
		if ev.Kind == hook.Press {
			stroke := mapping.NewStroke(ev.Key, sh.Snapshot())
			return hook.Verdict{Kind: hook.Intercept}, &Capture{Idx: rec.Idx, Side: rec.Side, Stroke: stroke}
		}
		// Releases are swallowed but never captured (spec §4.C).
		return hook.Verdict{Kind: hook.Intercept}, nil
	}

	res := table.Lookup(sh, ev.Key)
	if !res.Matched {
		return hook.Verdict{Kind: hook.Allow}, nil
	}
	if !res.HasOutput {
		return hook.Verdict{Kind: hook.Intercept}, nil
	}
	return hook.Verdict{Kind: hook.Replace, Sequence: synthesize(sh, res.Output, ev.Kind)}, nil
}

// synthesize implements spec §4.C's four-step algorithm: release held keys
// the output doesn't want, press output modifiers not already held, emit the
// primary at the triggering event's polarity, then an inverse-polarity tail
// (in reverse order) restoring the pre-substitution OS modifier state.
func synthesize(sh heldSnapshot, out mapping.Stroke, polarity hook.EventKind) []hook.SyntheticEvent {
	held := codeSet(sh.Snapshot())
	wantMods := codeSet(out.Modifiers())

	toRelease := sortedDifference(held, wantMods)
	toPress := sortedDifference(wantMods, held)

	var pre []hook.SyntheticEvent
	for _, k := range toRelease {
		for _, sided := range expandForInjection(k) {
			pre = append(pre, hook.SyntheticEvent{Key: sided, Kind: hook.Release})
		}
	}
	for _, k := range toPress {
		for _, sided := range expandForInjection(k) {
			pre = append(pre, hook.SyntheticEvent{Key: sided, Kind: hook.Press})
		}
	}

	seq := make([]hook.SyntheticEvent, 0, len(pre)*2+1)
	seq = append(seq, pre...)
	seq = append(seq, hook.SyntheticEvent{Key: out.Primary(), Kind: polarity})
	for i := len(pre) - 1; i >= 0; i-- {
		seq = append(seq, hook.SyntheticEvent{Key: pre[i].Key, Kind: invert(pre[i].Kind)})
	}
	return seq
}

// expandForInjection turns a generic modifier VK into its two sided VKs
// (injection always targets a physical-looking sided key); any other key,
// including an already-sided modifier, passes through unchanged (spec §4.C
// "expanding generic modifiers in the held set into both sided variants").
func expandForInjection(k vkey.Code) []vkey.Code {
	fam, ok := vkey.FamilyOf(k)
	if !ok || k != fam.Generic {
		return []vkey.Code{k}
	}
	return []vkey.Code{fam.Left, fam.Right}
}

func invert(k hook.EventKind) hook.EventKind {
	if k == hook.Press {
		return hook.Release
	}
	return hook.Press
}

func codeSet(codes []vkey.Code) map[vkey.Code]struct{} {
	set := make(map[vkey.Code]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// sortedDifference returns a \ b, sorted by VK value for deterministic
// synthesis output (map iteration order is not stable).
func sortedDifference(a, b map[vkey.Code]struct{}) []vkey.Code {
	var out []vkey.Code
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Engine is the stateful wrapper the hook callback calls (spec §4.C). It
// owns the recording selection and performs the shadow-update ordering
// around Classify.
type Engine struct {
	shadow    *shadow.Keyboard
	table     *mapping.Table
	recording RecordingState
}

// New builds an Engine over the given shadow and mapping table. Both are
// shared with the facade, which holds the mutex Handle must be called under.
func New(sh *shadow.Keyboard, table *mapping.Table) *Engine {
	return &Engine{shadow: sh, table: table}
}

// Select enters recording mode for (idx, side), clearing that side first
// (spec §4.C "on entry, the target side is cleared").
func (e *Engine) Select(idx int, side mapping.Side) {
	e.table.ClearSide(idx, side)
	e.recording = RecordingState{Active: true, Idx: idx, Side: side}
}

// ExitEdit leaves recording mode and re-establishes the trailing-empty
// invariant (spec §4.C).
func (e *Engine) ExitEdit() {
	e.recording = RecordingState{}
	e.table.EnsureTrailingEmpty()
}

// Recording reports the current recording state, for UI display.
func (e *Engine) Recording() RecordingState { return e.recording }

// Handle runs the per-event ordering in spec §4.C around Classify: the
// shadow is updated before classification on release and after
// classification on press, so a mapping's modifier check never sees the
// triggering key itself. dirty reports whether a recording capture wrote to
// the table, so the caller (the facade) can raise its own dirty flag — it
// must never call hook.Backend.Inject while holding its mutex, so Handle
// only computes the verdict; injection is the caller's job once unlocked.
func (e *Engine) Handle(ev hook.Event) (verdict hook.Verdict, dirty bool) {
	if ev.Injected {
		return hook.Verdict{Kind: hook.Allow}, false
	}

	if ev.Kind == hook.Release {
		e.shadow.Release(ev.Key)
	}

	verdict, capture := Classify(e.shadow, e.table, e.recording, ev)
	if capture != nil {
		e.table.Update(capture.Idx, capture.Side, capture.Stroke)
		dirty = true
	}

	if ev.Kind == hook.Press {
		e.shadow.Press(ev.Key)
	}

	return verdict, dirty
}
