// Package hook is the seam between the interception engine and the OS
// keyboard hook surface (spec §6). Backend is implemented for real on
// Windows (hook_windows.go); internal/engine only ever sees this package's
// platform-independent types, never raw Win32 structs or syscalls.
package hook

import "github.com/leonard/keyremap/internal/vkey"

// EventKind distinguishes a key-down from a key-up delivery. Repeats are
// reported as Press again, matching spec §6's WM_KEYDOWN/WM_KEYUP framing
// (auto-repeat resends WM_KEYDOWN).
type EventKind int

const (
	Press EventKind = iota
	Release
)

// Event is one observed keyboard event, translated from KBDLLHOOKSTRUCT.
type Event struct {
	Key      vkey.Code
	Kind     EventKind
	Injected bool // LLKHF_INJECTED — always Allow, never mutates the shadow (spec §4.C)
}

// SyntheticEvent is one element of a Replace verdict's injected batch,
// translated to a single KEYBDINPUT on submission.
type SyntheticEvent struct {
	Key  vkey.Code
	Kind EventKind
}

// HookProc is the callback the engine registers with a Backend. It must
// return promptly — it runs on the hook thread inside the OS message loop
// (spec §5).
type HookProc func(Event) Verdict

// VerdictKind mirrors spec §4.C's three-way classification.
type VerdictKind int

const (
	Allow VerdictKind = iota
	Intercept
	Replace
)

// Verdict is the Backend-facing classification result: Allow lets the OS
// continue processing, Intercept suppresses with no substitution, Replace
// suppresses and carries the batch to inject.
type Verdict struct {
	Kind     VerdictKind
	Sequence []SyntheticEvent
}

// Backend installs/uninstalls the low-level hook and submits synthetic
// input batches. Install must not return until the hook is active and ready
// to receive callbacks; Uninstall must be safe to call even if Install
// failed or was never called.
type Backend interface {
	// Install starts the hook thread, pins it to an OS thread, calls
	// SetWindowsHookExW, and pumps the message loop until Uninstall is
	// called. callback is invoked synchronously for every key-down/key-up,
	// injected ones included (marked by Event.Injected); its return value
	// determines Allow/Intercept/Replace.
	Install(callback HookProc) error

	// Uninstall calls UnhookWindowsHookEx and stops the message pump.
	// Hook uninstall failure is logged by the caller and the process exits
	// anyway (spec §7 "Fatal shutdown").
	Uninstall() error

	// Inject submits events as one batch (spec §6 "submitted as one
	// call"). Must never be called while the facade's mutex is held
	// (spec §5).
	Inject(events []SyntheticEvent) error
}
