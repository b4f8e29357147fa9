// Package tray provides system tray integration using fyne.io/systray. It is
// the minimal process-control front end (spec §1 "external collaborators"):
// enable/disable remapping, switch the active mapping file, quit — never the
// mapping-editor GUI, which stays out of scope.
package tray

import (
	"log/slog"
	"sync"

	"fyne.io/systray"
)

// Tray represents the system tray icon and menu.
type Tray struct {
	logger *slog.Logger

	onMappingFileChange func(path string)
	onToggle            func(enabled bool)
	onQuit              func()

	mu                    sync.Mutex
	enabled               bool
	currentMappingFile    string
	availableMappingFiles []string

	statusItem       *systray.MenuItem
	mappingFileItems []*systray.MenuItem
}

// Config holds tray configuration.
type Config struct {
	CurrentMappingFile    string
	AvailableMappingFiles []string
	Enabled               bool
	OnMappingFileChange   func(path string)
	OnToggle              func(enabled bool)
	OnQuit                func()
	Logger                *slog.Logger
}

// New creates a new system tray icon.
func New(cfg Config) *Tray {
	return &Tray{
		enabled:               cfg.Enabled,
		currentMappingFile:    cfg.CurrentMappingFile,
		availableMappingFiles: cfg.AvailableMappingFiles,
		onMappingFileChange:   cfg.OnMappingFileChange,
		onToggle:              cfg.OnToggle,
		onQuit:                cfg.OnQuit,
		logger:                cfg.Logger,
	}
}

// Run starts the system tray. This blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady builds the menu and, for each clickable item, starts a goroutine
// that blocks on that item's own ClickedCh — the shape fyne.io/systray's own
// docs and every consumer in this corpus settle on, rather than one shared
// loop polling every item's channel with a default-case sleep. Each item's
// goroutine exits on its own terms (the status and mapping-file entries loop
// for the life of the tray; the quit entry fires once and returns), so no
// item's click latency is coupled to another's.
func (t *Tray) onReady() {
	systray.SetIcon(keyboardIcon)
	systray.SetTitle("keyremap")
	t.updateTooltip()

	t.statusItem = systray.AddMenuItem(t.statusLabel(), "Toggle key remapping")
	go t.watchToggle()

	systray.AddSeparator()

	fileMenu := systray.AddMenuItem("Mapping file", "Select active mapping file")
	t.mappingFileItems = make([]*systray.MenuItem, len(t.availableMappingFiles))
	for i, name := range t.availableMappingFiles {
		item := fileMenu.AddSubMenuItem(t.fileLabel(name), "Switch to "+name)
		t.mappingFileItems[i] = item
		go t.watchMappingFile(item, name)
	}

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Exit keyremap")
	go t.watchQuit(quitItem)
}

// watchToggle owns the status item for the life of the tray.
func (t *Tray) watchToggle() {
	for range t.statusItem.ClickedCh {
		t.toggleEnabled()
	}
}

// watchMappingFile owns one mapping-file submenu entry for the life of the
// tray; name is captured per-goroutine so the loop variable in onReady never
// leaks across entries.
func (t *Tray) watchMappingFile(item *systray.MenuItem, name string) {
	for range item.ClickedCh {
		t.selectMappingFile(name)
	}
}

// watchQuit fires exactly once: Quit tears the whole tray down.
func (t *Tray) watchQuit(item *systray.MenuItem) {
	<-item.ClickedCh
	if t.onQuit != nil {
		t.onQuit()
	}
	systray.Quit()
}

// toggleEnabled flips the enabled state and notifies the Facade.
func (t *Tray) toggleEnabled() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.mu.Unlock()

	t.applyEnabled(enabled)

	if t.onToggle != nil {
		t.onToggle(enabled)
	}
}

// selectMappingFile switches the current mapping file and relabels every
// submenu entry to reflect the new active file.
func (t *Tray) selectMappingFile(name string) {
	t.mu.Lock()
	if name == t.currentMappingFile {
		t.mu.Unlock()
		return
	}
	t.currentMappingFile = name
	files := append([]string(nil), t.availableMappingFiles...)
	t.mu.Unlock()

	for i, f := range files {
		t.mappingFileItems[i].SetTitle(t.fileLabel(f))
	}
	t.updateTooltip()
	t.logger.Info("mapping file changed", "path", name)

	if t.onMappingFileChange != nil {
		t.onMappingFileChange(name)
	}
}

// applyEnabled updates the status item's label/icon for the given state.
func (t *Tray) applyEnabled(enabled bool) {
	t.statusItem.SetTitle(t.statusLabel())
	if enabled {
		systray.SetIcon(keyboardIcon)
	} else {
		systray.SetIcon(keyboardDisabledIcon)
	}
	t.updateTooltip()
}

// statusLabel renders the status item's title for the current enabled state.
func (t *Tray) statusLabel() string {
	t.mu.Lock()
	enabled := t.enabled
	t.mu.Unlock()
	if enabled {
		return "✓ Enabled"
	}
	return "✗ Disabled"
}

// fileLabel renders a mapping-file submenu entry's title, marking the
// currently active file.
func (t *Tray) fileLabel(name string) string {
	t.mu.Lock()
	current := t.currentMappingFile
	t.mu.Unlock()
	if name == current {
		return "● " + name
	}
	return "  " + name
}

// updateTooltip updates the tray tooltip.
func (t *Tray) updateTooltip() {
	t.mu.Lock()
	enabled, file := t.enabled, t.currentMappingFile
	t.mu.Unlock()

	status := "Enabled"
	if !enabled {
		status = "Disabled"
	}
	systray.SetTooltip("keyremap: " + status + " (" + file + ")")
}

// onExit is called when systray is exiting.
func (t *Tray) onExit() {
	t.logger.Info("tray exiting")
}

// Quit stops the system tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetEnabled sets the displayed enabled state, e.g. if toggled elsewhere.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
	if t.statusItem != nil {
		t.applyEnabled(enabled)
	}
}
