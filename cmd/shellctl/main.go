package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"acmeshell/pkg/logger"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "SHELL_LOGGER_MODE"
	EnvLoggerLevel = "SHELL_LOGGER_LEVEL"
)

// ErrInitLogger - ошибка инициализации логгера.
const ErrInitLogger = "failed to initialize logger"

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	if err := logger.InitGlobalLoggerWithLevel(env, os.Getenv(EnvLoggerLevel)); err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	ctx := logger.NewRequestIDContext(context.Background(), "")

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
