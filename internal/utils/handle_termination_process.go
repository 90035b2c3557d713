package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Renal37/cardledger/internal/logger"
	"go.uber.org/zap"
)

// HandleTerminationProcess возвращает контекст, который отменяется по SIGINT/SIGTERM.
// Повторный сигнал завершает процесс сразу, не дожидаясь остановки.
func HandleTerminationProcess(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		logger.Log.Info("termination signal received, shutting down", zap.String("signal", sig.String()))
		cancel()

		<-c
		logger.Log.Warn("second termination signal, exiting immediately")
		os.Exit(1)
	}()

	return ctx
}
