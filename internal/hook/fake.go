package hook

import "sync"

// FakeBackend is an in-memory Backend for exercising internal/engine without
// a real Win32 hook. It runs on any GOOS: Install records the callback
// instead of starting a message loop, and Inject records the batches it
// receives instead of calling SendInput.
type FakeBackend struct {
	mu        sync.Mutex
	callback  HookProc
	installed bool
	injected  [][]SyntheticEvent
}

// NewFakeBackend returns a ready-to-use FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Install(callback HookProc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = callback
	f.installed = true
	return nil
}

func (f *FakeBackend) Uninstall() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installed = false
	f.callback = nil
	return nil
}

func (f *FakeBackend) Inject(events []SyntheticEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := append([]SyntheticEvent(nil), events...)
	f.injected = append(f.injected, batch)
	return nil
}

// Deliver feeds ev through the installed callback, as the real hook thread
// would, and returns its verdict. Panics if no callback has been installed,
// which would itself be a test bug.
func (f *FakeBackend) Deliver(ev Event) Verdict {
	f.mu.Lock()
	cb := f.callback
	f.mu.Unlock()
	if cb == nil {
		panic("hook.FakeBackend: Deliver called before Install")
	}
	return cb(ev)
}

// Injected returns every batch submitted to Inject so far, in order.
func (f *FakeBackend) Injected() [][]SyntheticEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]SyntheticEvent(nil), f.injected...)
}

// Installed reports whether Install has been called without a matching
// Uninstall.
func (f *FakeBackend) Installed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installed
}
