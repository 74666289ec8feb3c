// emprestei es el front-end de terminal: login y pantalla principal de empréstimos contra la
// API de la plataforma (EMPRESTEI_API_URL).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhoicas/emprestei/internal/application/login"
	"github.com/jhoicas/emprestei/internal/application/session"
	"github.com/jhoicas/emprestei/internal/infrastructure/platform"
	"github.com/jhoicas/emprestei/internal/interfaces/tui"
	"github.com/jhoicas/emprestei/pkg/config"
	"github.com/jhoicas/emprestei/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "emprestei: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	// La terminal es de la TUI: los logs van a archivo.
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(filepath.Dir(cfg.Client.SessionFile), "emprestei.log")
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return fmt.Errorf("directorio de log: %w", err)
	}
	log, f, err := logger.NewFile(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}, logFile)
	if err != nil {
		return err
	}
	defer f.Close()
	log.Info().Str("api", cfg.Client.APIURL).Msg("iniciando emprestei")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sin timeout global: las suscripciones SSE mantienen la respuesta abierta.
	hc := &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: 15 * time.Second}}
	authClient := platform.NewAuthClient(cfg.Client.APIURL, cfg.Client.SessionFile, hc, log.Zerolog())
	if err := authClient.Restore(); err != nil {
		log.Warn().Err(err).Msg("sesión guardada descartada")
	}
	dbClient := platform.NewDatabaseClient(cfg.Client.APIURL, authClient, hc, log.Zerolog())

	bridge := tui.NewBridge()
	gate := session.NewGate(authClient, dbClient, log.Zerolog(), bridge.SetView, bridge.SetState)

	app := tui.New(ctx, login.NewView(authClient, log.Zerolog()))
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	go bridge.Pump(ctx, program.Send)
	gateDone := make(chan struct{})
	gateCtx, stopGate := context.WithCancel(ctx)
	go func() {
		defer close(gateDone)
		_ = gate.Run(gateCtx)
	}()

	_, err = program.Run()
	stopGate()
	<-gateDone
	log.Info().Msg("emprestei finalizado")
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
