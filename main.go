package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dineright/cmd"
	"dineright/internal/db"
	"dineright/internal/logging"
	"dineright/internal/remote"
	"dineright/internal/stub"
	"dineright/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	config, err := cmd.ParseFlags(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if config.StubAddr != "" {
		err = runStub(config)
	} else {
		err = runApp(config)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runApp(config *cmd.Config) error {
	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(config.LogPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := logging.New(logging.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
		Output: logFile,
	})
	logger.Info().Str("version", version).Str("base_url", config.BaseURL).Msg("starting")

	client := remote.NewClient(config.BaseURL, config.Timeout, logger)
	app := ui.New(client, ui.Options{ConfigDir: config.ConfigDir, Logger: logger})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run app: %w", err)
	}
	return nil
}

func runStub(config *cmd.Config) error {
	logger := logging.New(logging.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
		Output: os.Stderr,
	})

	database, err := db.Open(config.StubDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.Seed(database, db.SampleRestaurants); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	server := stub.NewServer(database, stub.Config{LoginLimit: config.StubLoginLimit}, logger)
	srv := &http.Server{
		Addr:              config.StubAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", config.StubAddr).Str("db", config.StubDB).Msg("stub service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stub service failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
