package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/xtding233/prize-gacha/internal/app"
	"github.com/xtding233/prize-gacha/internal/config"
	"github.com/xtding233/prize-gacha/internal/grpcapi"
	"github.com/xtding233/prize-gacha/internal/httpapi"
	"github.com/xtding233/prize-gacha/internal/logger"
	"github.com/xtding233/prize-gacha/internal/machine"
)

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		slog.Error("config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.ParseMode(cfg.Log.Mode))

	a, err := app.New(cfg, log, machine.Options{})
	if err != nil {
		log.Error("startup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		log.Error("startup failed", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	var httpSrv *http.Server
	if cfg.HTTP.Addr != "" {
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(a.Ctl, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("http listening", slog.String("addr", cfg.HTTP.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	var grpcSrv *grpc.Server
	if cfg.GRPC.Addr != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			log.Error("grpc listen", slog.Any("err", err))
			return
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(grpcapi.LogUnary(log)))
		grpcapi.Register(grpcSrv, grpcapi.NewServer(a.Ctl))
		go func() {
			log.Info("grpc listening", slog.String("addr", cfg.GRPC.Addr))
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.Error("server stopped", slog.Any("err", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if httpSrv != nil {
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", slog.Any("err", err))
		}
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
}
