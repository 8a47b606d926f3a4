package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/calculator"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/internal/server"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	var conf *config.Configuration
	var err error
	if _, statErr := os.Stat(*configLocation); statErr != nil && *configLocation == constants.DefaultConfigFile {
		conf, err = config.Default()
	} else {
		conf, err = config.LoadConfiguration(*configLocation)
	}
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.String("op", "main"), zap.Error(err))
	}
	opts, err := conf.CalculatorOptions()
	if err != nil {
		logger.Fatal("invalid engine configuration", zap.String("op", "main"), zap.Error(err))
	}

	serverConfig, err := server.NewConfig(conf.Server)
	if err != nil {
		logger.Fatal("invalid server configuration", zap.String("op", "main"), zap.Error(err))
	}
	if *address != "" {
		serverConfig.Address = *address
	}

	responseCache := serverConfig.NewCache()
	if redisCache, ok := responseCache.(*cache.Redis); ok {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis cache unreachable, requests will be computed uncached until it recovers",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		cancel()
	}
	if closer, ok := responseCache.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	handler := server.NewHandler(logger, calculator.New(logger, opts), server.Options{
		MaxUploadSize: serverConfig.UploadSizeBytes(),
		Version:       version,
		Cache:         responseCache,
	})

	srv := &http.Server{
		Addr:              serverConfig.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.String("op", "main"), zap.Error(err))
		}
	}()

	logger.Info(fmt.Sprintf("listening on %s", serverConfig.Address),
		zap.String("op", "main"),
		zap.Bool("cache", responseCache != nil),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.String("op", "main"), zap.Error(err))
	}
}
