package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/config"
	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/services"
	"github.com/j-veylop/tower-battlelog/internal/ui/tabs/add"
	"github.com/j-veylop/tower-battlelog/internal/ui/tabs/daily"
	"github.com/j-veylop/tower-battlelog/internal/ui/tabs/info"
	"github.com/j-veylop/tower-battlelog/internal/ui/tabs/reports"
)

// runTUI starts the dashboard and blocks until the user quits.
func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	// Starts the inbox watcher and imports files left from the last run.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		reports.New(state, svcManager),
		add.New(state, svcManager),
		daily.New(state, svcManager),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("starting TUI", "database", cfg.DatabasePath, "inbox", cfg.InboxPath)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
