// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания и обработки сигналов SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"acmeshell/pkg/logger"
)

// Hook - функция освобождения ресурса при завершении.
type Hook func(ctx context.Context) error

// Константы для логирования.
const (
	LogSignalReceived = "shutdown signal received"
	LogHooksTimedOut  = "shutdown hooks timed out"
	LogHookFailed     = "shutdown hook failed"
)

// ErrTimeout возвращается, если хуки не уложились в отведенное время.
var ErrTimeout = errors.New("shutdown timed out")

// Wait блокирует выполнение до получения сигнала SIGINT или SIGTERM
// (или отмены ctx), затем выполняет все хуки в рамках заданного timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sigCtx.Done()
	logger.Log(ctx).Info(ctx, LogSignalReceived)

	return Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run параллельно выполняет хуки и ждет их завершения не дольше timeout.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) error {
	log := logger.Log(ctx)

	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var group errgroup.Group
	for i, hook := range hooks {
		if hook == nil {
			continue
		}
		group.Go(func() error {
			if err := hook(hookCtx); err != nil {
				log.Error(ctx, LogHookFailed, zap.Int("hook", i), zap.Error(err))
				return fmt.Errorf("hook %d: %w", i, err)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-hookCtx.Done():
		log.Warn(ctx, LogHooksTimedOut, zap.Duration("timeout", timeout))
		return fmt.Errorf("%w: %w", ErrTimeout, hookCtx.Err())
	}
}
