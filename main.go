package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"LatticeDB/server"
	"LatticeDB/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st, err := store.New(cfg.A, cfg.B)
	if err != nil {
		logger.Fatal("failed to construct store", zap.Error(err))
	}
	defer st.Close()

	srv := server.New(cfg, st, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}
