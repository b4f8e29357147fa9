//go:build windows

// Command keyremap installs a low-level Windows keyboard hook and remaps
// keystrokes according to a user-edited mapping file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell"

	"github.com/leonard/keyremap/internal/config"
	"github.com/leonard/keyremap/internal/consoleui"
	"github.com/leonard/keyremap/internal/facade"
	"github.com/leonard/keyremap/internal/hook"
	"github.com/leonard/keyremap/internal/persistence"
	"github.com/leonard/keyremap/internal/tray"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	mappingFile := flag.String("mapping", "", "Mapping file name to use")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version information")
	noTray := flag.Bool("no-tray", false, "Run without system tray")
	console := flag.Bool("console", false, "Run the headless terminal dashboard instead of the tray")
	flag.Parse()

	if *showVersion {
		fmt.Printf("keyremap %s (%s) built %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *mappingFile != "" {
		cfg.MappingFile = *mappingFile
	}

	logger.Info("keyremap starting", "version", version, "mapping_file", cfg.MappingFile)

	if err := ensureConfigDir(cfg); err != nil {
		logger.Error("failed to create config directory", "error", err)
		os.Exit(1)
	}

	f := facade.Init(hook.NewBackend(), persistence.YAMLCodec{})

	mappingPath := cfg.MappingPath(cfg.MappingFile)
	if err := f.ImportFile(mappingPath); err != nil {
		logger.Warn("starting with an empty mapping table", "path", mappingPath, "error", err)
	} else {
		logger.Info("loaded mapping file", "path", mappingPath)
	}
	f.SetEnabled(cfg.StartHook)

	if err := f.InstallHook(); err != nil {
		logger.Error("failed to install keyboard hook", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := f.DeleteHook(); err != nil {
			logger.Error("failed to uninstall keyboard hook", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch {
	case *console && consoleui.Available():
		runConsole(f, logger, sigChan)
	case *noTray:
		logger.Info("running headless, press Ctrl+C to quit")
		<-sigChan
		logger.Info("shutting down...")
	default:
		runTray(f, cfg, logger, sigChan)
	}

	logger.Info("keyremap stopped")
}

func runConsole(f *facade.Facade, logger *slog.Logger, sigChan <-chan os.Signal) {
	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Error("failed to create terminal screen", "error", err)
		return
	}
	dash := consoleui.New(screen, f, logger)

	go func() {
		<-sigChan
		dash.Stop()
	}()

	if err := dash.Run(); err != nil {
		logger.Error("console dashboard exited with error", "error", err)
	}
}

func runTray(f *facade.Facade, cfg *config.Config, logger *slog.Logger, sigChan <-chan os.Signal) {
	availableMappingFiles, err := cfg.AvailableMappingFiles()
	if err != nil {
		logger.Warn("could not list mapping files", "error", err)
		availableMappingFiles = []string{cfg.MappingFile}
	}

	trayCfg := tray.Config{
		CurrentMappingFile:    cfg.MappingFile,
		AvailableMappingFiles: availableMappingFiles,
		Enabled:               f.Enabled(),
		OnMappingFileChange: func(name string) {
			path := cfg.MappingPath(name)
			if err := f.ImportFile(path); err != nil {
				logger.Error("failed to load mapping file", "path", path, "error", err)
				return
			}
			cfg.MappingFile = name
			if err := cfg.Save(); err != nil {
				logger.Warn("failed to save config", "error", err)
			}
		},
		OnToggle: func(enabled bool) {
			f.SetEnabled(enabled)
		},
		OnQuit: func() {
			logger.Info("shutting down...")
		},
		Logger: logger,
	}

	trayIcon := tray.New(trayCfg)

	go func() {
		<-sigChan
		logger.Info("shutting down...")
		trayIcon.Quit()
	}()

	trayIcon.Run()
}

// ensureConfigDir creates the config and mappings directories if needed.
func ensureConfigDir(cfg *config.Config) error {
	mappingDir := filepath.Join(cfg.ConfigDir, "mappings")
	if err := os.MkdirAll(mappingDir, 0755); err != nil {
		return err
	}
	return nil
}
