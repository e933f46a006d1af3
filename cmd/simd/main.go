package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/eventstore"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/simd"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

func main() {
	envFile := os.Getenv("VAXSIM_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFile, err)
		os.Exit(1)
	}

	cfg, err := parseDaemonConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(2)
	}
	logger.SetDefault(logger.New(cfg.LogLevel, os.Stdout))

	if err := run(cfg); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg daemonConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := config.Builtin()
	if cfg.CatalogPath != "" {
		loaded, err := config.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}
		catalog = loaded
	}

	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store, catalog)
	executor.SetNotifier(simd.NewNotifier())
	httpAPI := simd.NewHTTPServer(store, executor)
	httpAPI.SetCreateRateLimit(simd.NewRateLimiter(cfg.CreateRate))

	var archive *eventstore.Store
	if cfg.DBPath != "" {
		var err error
		if archive, err = eventstore.Open(cfg.DBPath); err != nil {
			return err
		}
		defer archive.Close()
		executor.SetArchive(archive)
		httpAPI.SetArchiveReader(archive)
	}

	sweeper, err := simd.NewSweeper(store, executor, simd.SweeperConfig{
		RunSchedule: cfg.SweepCron,
		Scenarios:   cfg.SweepScenarios,
		Retention:   cfg.Retention,
	})
	if err != nil {
		return err
	}
	if archive != nil {
		sweeper.SetArchivePruner(archive)
	}

	// TODO: Configure gRPC server security (e.g., TLS, authentication, rate limiting)
	// before using this service in a production environment.
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(simd.UnaryLoggingInterceptor))
	simd.RegisterSimulationServer(grpcServer, simd.NewSimulationGRPCServer(store, executor))

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen for gRPC on %s: %w", cfg.GRPCAddr, err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpAPI.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	if sweeper.Jobs() > 0 {
		sweeper.Start()
		logger.Info("sweeper started", "jobs", sweeper.Jobs(), "schedule", cfg.SweepCron, "retention", cfg.Retention)
	}

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-sweeper.Stop().Done()
	// Cancel runs first so event streams see a terminal status and return.
	executor.StopAll()
	stopGRPC(shutdownCtx, grpcServer)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	executor.Wait()
	return nil
}

type grpcStopper interface {
	GracefulStop()
	Stop()
}

// stopGRPC drains in-flight calls, forcing a hard stop once ctx expires
func stopGRPC(ctx context.Context, srv grpcStopper) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("gRPC graceful stop timed out, forcing stop")
		srv.Stop()
		<-done
	}
}
