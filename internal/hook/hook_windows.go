//go:build windows

package hook

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/leonard/keyremap/internal/vkey"
)

// Win32 constants for WH_KEYBOARD_LL (spec §6 "OS hook surface").
const (
	whKeyboardLL = 13

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	llkhfInjected = 0x00000010
	llkhfUp       = 0x00000080

	hcAction = 0

	inputKeyboard  = 1
	keyEventFKeyUp = 0x0002

	wmQuit = 0x0012
)

// kbdllhookstruct mirrors KBDLLHOOKSTRUCT field-for-field (spec §6 "lParam
// points to a struct with fields {vkCode, flags}").
type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// keybdinput mirrors KEYBDINPUT.
type keybdinput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors the INPUT union specialized to INPUT_KEYBOARD. The union's
// largest member (MOUSEINPUT) is 32 bytes on amd64; KEYBDINPUT is 24 once Go
// lays it out with trailing padding, so the explicit 8-byte tail pad brings
// the struct to INPUT's full 40 bytes, the same defensive padding this
// corpus's other Windows-hook code calls out by name.
type input struct {
	Type uint32
	_    uint32 // alignment padding before the union on 64-bit
	Ki   keybdinput
	_    [8]byte // tail padding to match INPUT's union size
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procSendInput           = user32.NewProc("SendInput")
)

// winBackend is the real Backend, used whenever GOOS=windows.
type winBackend struct {
	mu       sync.Mutex
	hook     windows.Handle
	threadID uint32
	done     chan struct{}

	callback HookProc
	active   atomic.Bool
}

// NewBackend returns the Windows low-level-hook Backend.
func NewBackend() Backend {
	return &winBackend{}
}

func (b *winBackend) Install(callback HookProc) error {
	b.mu.Lock()
	if b.active.Load() {
		b.mu.Unlock()
		return errors.New("hook already installed")
	}
	b.callback = callback
	b.done = make(chan struct{})
	b.mu.Unlock()

	ready := make(chan error, 1)
	go b.hookThread(ready)

	if err := <-ready; err != nil {
		return fmt.Errorf("installing keyboard hook: %w", err)
	}
	b.active.Store(true)
	return nil
}

// hookThread pins itself to its OS thread (WH_KEYBOARD_LL delivers
// callbacks only on the installing thread's message loop, spec §5), installs
// the hook, then pumps GetMessage/DispatchMessage until told to stop.
func (b *winBackend) hookThread(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b.mu.Lock()
	b.threadID = windows.GetCurrentThreadId()
	b.mu.Unlock()

	hookProc := windows.NewCallback(b.lowLevelKeyboardProc)
	h, _, err := procSetWindowsHookEx.Call(
		uintptr(whKeyboardLL),
		hookProc,
		0,
		0,
	)
	if h == 0 {
		ready <- fmt.Errorf("SetWindowsHookExW: %w", err)
		return
	}
	b.mu.Lock()
	b.hook = windows.Handle(h)
	b.mu.Unlock()
	ready <- nil

	var msg struct {
		hwnd    uintptr
		message uint32
		wParam  uintptr
		lParam  uintptr
		time    uint32
		pt      struct{ x, y int32 }
	}
	for {
		r, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}

	b.mu.Lock()
	if b.hook != 0 {
		procUnhookWindowsHookEx.Call(uintptr(b.hook))
		b.hook = 0
	}
	b.mu.Unlock()
	close(b.done)
}

func (b *winBackend) Uninstall() error {
	if !b.active.Load() {
		return nil
	}
	b.mu.Lock()
	tid := b.threadID
	b.mu.Unlock()

	// WM_QUIT breaks the hookThread's GetMessage loop, which then unhooks
	// and exits; posting it is the standard way to stop a message-loop
	// thread from the outside.
	procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	<-b.done
	b.active.Store(false)
	return nil
}

func (b *winBackend) Inject(events []SyntheticEvent) error {
	if len(events) == 0 {
		return nil
	}
	inputs := make([]input, len(events))
	for i, ev := range events {
		var flags uint32
		if ev.Kind == Release {
			flags = keyEventFKeyUp
		}
		inputs[i] = input{
			Type: inputKeyboard,
			Ki: keybdinput{
				WVk:     uint16(ev.Key),
				DwFlags: flags,
			},
		}
	}
	r, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if r != uintptr(len(inputs)) {
		// Spec §7 "Ignored": SendInput returning a short count is ignored
		// per call, not retried — retrying would desynchronize the batch.
		return fmt.Errorf("SendInput accepted %d/%d events: %w", r, len(inputs), err)
	}
	return nil
}

// lowLevelKeyboardProc is the LowLevelKeyboardProc registered with
// SetWindowsHookExW. It must return promptly: all it does is translate the
// KBDLLHOOKSTRUCT, call the engine's callback, and act on the verdict.
func (b *winBackend) lowLevelKeyboardProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode == hcAction {
		switch wParam {
		case wmKeyDown, wmSysKeyDown, wmKeyUp, wmSysKeyUp:
			kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))

			ev := Event{
				Key:      vkey.Code(kb.VkCode),
				Kind:     Press,
				Injected: kb.Flags&llkhfInjected != 0,
			}
			if kb.Flags&llkhfUp != 0 {
				ev.Kind = Release
			}

			verdict := b.callback(ev)
			switch verdict.Kind {
			case Intercept:
				return 1
			case Replace:
				if err := b.Inject(verdict.Sequence); err != nil {
					// Spec §7: ignored, but the original event still must
					// not pass through once we've decided to replace it.
					return 1
				}
				return 1
			}
		}
	}

	b.mu.Lock()
	h := b.hook
	b.mu.Unlock()

	r, _, _ := procCallNextHookEx.Call(uintptr(h), uintptr(nCode), wParam, lParam)
	return r
}
