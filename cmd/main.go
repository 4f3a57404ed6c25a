package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health"

	"github.com/helloca/ai-service/internal/config"
	"github.com/helloca/ai-service/internal/database"
	"github.com/helloca/ai-service/internal/handler"
	healthcheck "github.com/helloca/ai-service/internal/health"
	"github.com/helloca/ai-service/internal/logging"
	"github.com/helloca/ai-service/internal/repository"
	"github.com/helloca/ai-service/internal/server"
)

func main() {
	cfg, err := config.NewConfig(".env")
	if err != nil {
		logrus.Fatal(err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %v", err)
	}
	logging.InitLogger(level, cfg.LogFormat)
	log := logging.GetLogger()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	repo := repository.NewRepository(db)
	defer repo.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// gRPC health service
	status := health.NewServer()
	grpcSrv := healthcheck.NewGRPCServer(status)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("grpc listen: %v", err)
	}
	go func() {
		log.Infof("gRPC health server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	monitor, err := healthcheck.NewMonitor(status, repo, cfg.HealthInterval)
	if err != nil {
		log.Fatal(err)
	}
	go monitor.Run(ctx)

	conn, err := healthcheck.Dial(cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("grpc dial: %v", err)
	}
	defer conn.Close()

	router := server.NewRouter(cfg.CORS, handler.NewHandler(), healthcheck.NewGateway(conn))
	srv := server.NewHTTPServer(cfg.HTTPAddr, router)

	go func() {
		log.Infof("HelloCA AI Service listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")

	status.Shutdown()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server Shutdown: %v", err)
	}
	grpcSrv.GracefulStop()
	log.Info("Server exiting")
}
