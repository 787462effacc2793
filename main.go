package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hwmonitor/internal/config"
	"hwmonitor/internal/frontend"
	"hwmonitor/internal/middleware"
	"hwmonitor/internal/routes"
	"hwmonitor/internal/services"
	"hwmonitor/internal/views"

	tea "github.com/charmbracelet/bubbletea"
)

const version = "0.1.0"

const usage = `usage: hwmonitor <command> [flags]

commands:
  server   run the telemetry backend
  watch    show live charts from a running backend
  token    mint a bearer token for a client
  version  print the version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "path to the YAML config file")
	clientName := fs.String("name", "", "client name embedded in the token (token command)")
	fs.Parse(os.Args[2:])

	if cmd == "version" {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}

	switch cmd {
	case "server":
		err = runServer(cfg)
	case "watch":
		err = runWatch(cfg)
	case "token":
		err = runToken(cfg, *clientName)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[%s] %v", cmd, err)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hwmonitor.yaml"
	}
	return filepath.Join(home, ".hwmonitor", "config.yaml")
}

func newAuthService(cfg *config.Config) *services.AuthService {
	return services.NewAuthService(cfg.Server.SecretKey, cfg.Server.DataDir,
		config.Duration(cfg.Server.TokenExpiry, 90*24*time.Hour))
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var gpu services.GPUProbe
	if _, err := exec.LookPath(cfg.Collector.NvidiaSMIPath); err == nil {
		gpu = services.NewNvidiaSMI(cfg.Collector.NvidiaSMIPath)
	} else {
		log.Printf("[SERVER] %s not found, GPU telemetry disabled", cfg.Collector.NvidiaSMIPath)
	}
	probe := services.NewProbe(gpu, services.NewFanReader(cfg.Collector.HwmonRoot))
	source := services.NewCachedSource(probe, 2*time.Second, 10*time.Minute)

	interval := config.Duration(cfg.Collector.Interval, time.Second)
	history := services.NewHistoryCollector(source, cfg.Collector.HistoryCapacity)
	history.Start(interval)
	defer history.Stop()

	processes := services.NewProcessCollector(services.NewSystemProcesses(),
		cfg.Collector.HistoryCapacity, cfg.Collector.ProcessAverage)
	processes.Start(interval)
	defer processes.Stop()

	hub := services.NewEventHub()
	defer hub.Stop()

	logger := middleware.NewSecurityLogger()
	var auth middleware.TokenValidator
	if cfg.Server.RequireAuth {
		auth = newAuthService(cfg)
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:    cfg.Server,
		Source:    source,
		History:   history,
		Processes: processes,
		Settings:  services.NewSettingsService(cfg.Server.DataDir, version, hub),
		Hub:       hub,
		Auth:      auth,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] hwmonitor %s listening on %s (auth: %v)", version, cfg.Server.Addr, cfg.Server.RequireAuth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Println("[SERVER] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runWatch(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the terminal belongs to the UI, logs go to a file
	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		return err
	}
	logFile, err := tea.LogToFile(filepath.Join(cfg.Server.DataDir, "watch.log"), "watch")
	if err != nil {
		return err
	}
	defer logFile.Close()

	client := frontend.NewClient(cfg.Client.ServerURL, cfg.Client.Token,
		config.Duration(cfg.Client.RequestTimeout, 5*time.Second))

	app := frontend.NewApp(client, frontend.AppConfig{
		Window:         cfg.Client.HistoryLength,
		UsageInterval:  config.Duration(cfg.Client.UsageInterval, frontend.UsageInterval),
		SensorInterval: config.Duration(cfg.Client.SensorInterval, frontend.SensorInterval),
		ProcessRows:    10,
		Prefill:        true,
	})
	defer app.Close()

	if _, err := app.Settings.Load(ctx); err != nil {
		return fmt.Errorf("load settings from %s: %w", cfg.Client.ServerURL, err)
	}
	app.MountDisplayTargets(ctx)
	for _, s := range frontend.AllSeries {
		if s.Named() {
			app.Mount(ctx, s)
		}
	}
	app.MountProcesses()

	listener, err := frontend.NewEventListener(cfg.Client.ServerURL, cfg.Client.Token)
	if err != nil {
		return err
	}
	app.Attach(listener)
	go listener.RunWithRetry(ctx, 5*time.Second)

	p := tea.NewProgram(views.NewModel(app), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runToken(cfg *config.Config, name string) error {
	if name == "" {
		name, _ = os.Hostname()
	}
	if !middleware.NewInputValidator().ValidateClientName(name) {
		return fmt.Errorf("invalid client name %q", name)
	}

	auth := newAuthService(cfg)
	token, err := auth.GenerateToken(name)
	if err != nil {
		return err
	}
	middleware.NewSecurityLogger().LogTokenGenerated(name)

	fmt.Printf("client:  %s\nexpires: %s\ntoken:   %s\n",
		name, time.Now().Add(auth.TokenExpiry()).Format(time.RFC3339), token)
	return nil
}
