package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"acmeshell/internal/shell/adapters/cache"
	"acmeshell/internal/shell/adapters/events"
	"acmeshell/internal/shell/adapters/mail"
	pgadapter "acmeshell/internal/shell/adapters/postgres"
	adapterServices "acmeshell/internal/shell/adapters/services"
	"acmeshell/internal/shell/adapters/simulated"
	"acmeshell/internal/shell/adapters/store"
	"acmeshell/internal/shell/app"
	shellhttp "acmeshell/internal/shell/app/http"
	"acmeshell/internal/shell/app/http/pages"
	"acmeshell/internal/shell/config"
	"acmeshell/internal/shell/domain/forms"
	portEvents "acmeshell/internal/shell/ports/events"
	portMail "acmeshell/internal/shell/ports/mail"
	portServices "acmeshell/internal/shell/ports/services"
	"acmeshell/internal/shell/resilience"
	migrations "acmeshell/migrations/shell"
	"acmeshell/pkg/db/postgres"
	"acmeshell/pkg/db/redis"
	"acmeshell/pkg/logger"
	"acmeshell/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "SHELL_LOGGER_MODE"
	EnvLoggerLevel = "SHELL_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrInitBackend          = "failed to initialize account backend"
	ErrConnectPostgres      = "failed to connect to Postgres"
	ErrMigrate              = "failed to apply migrations"
	ErrConnectEvents        = "failed to connect to event bus"
	ErrCreateHTTPServer     = "failed to create HTTP server"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "shell service started"
	LogServiceShutdownDone = "shell service shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingRedis        = "closing Redis connection"
	LogClosingPostgres     = "closing Postgres connection"
	LogClosingEvents       = "closing event publisher"
	LogInitCache           = "initializing cache"
	LogInitBackend         = "initializing account backend"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

// backend - выбранная реализация сервиса аккаунтов и ресурсы, которые нужно закрыть.
type backend struct {
	accounts  portServices.AccountBackend
	db        *postgres.Database
	publisher portEvents.Publisher
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx, config.DefaultEnvFiles...)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitCache)
		redisClient, err := redis.NewClient(ctx, &redis.Config{
			Host:            cfg.Redis.Host,
			Port:            cfg.Redis.Port,
			Password:        cfg.Redis.Password,
			DB:              cfg.Redis.DB,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdle:         cfg.Redis.MinIdle,
			ConnectTimeout:  cfg.Redis.ConnectTimeout,
			ReadTimeout:     cfg.Redis.ReadTimeout,
			WriteTimeout:    cfg.Redis.WriteTimeout,
			IdleTimeout:     cfg.Redis.IdleTimeout,
			MaxConnLifetime: cfg.Redis.MaxConnLifetime,
		})
		if err != nil {
			log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
			exitCode = 1
			return
		}
		redisCache := cache.NewRedisCache(redisClient, cfg.Redis.DefaultTTL)

		log.Info(ctx, LogInitBackend, zap.String("backend", cfg.Backend.Kind))
		factory := adapterServices.NewServiceFactory(cfg.Session.SecretKey,
			cfg.Session.TTL, cfg.Session.RememberTTL, cfg.Backend.BcryptCost)

		be, err := newBackend(ctx, cfg, factory.PasswordService())
		if err != nil {
			log.Error(ctx, ErrInitBackend, zap.Error(err))
			_ = redisCache.Close()
			exitCode = 1
			return
		}

		breaker := resilience.NewCircuitBreaker("accounts", resilience.DefaultCircuitBreakerConfig())

		checks := map[string]pages.HealthCheck{"redis": redisCache.Ping}
		if be.db != nil {
			checks["postgres"] = be.db.Ping
		}

		log.Info(ctx, LogInitHTTPServer)
		formTTL := cfg.Session.FormTTL
		server, err := shellhttp.New(shellhttp.Options{
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			SubmissionTimeout: cfg.Submission.Timeout,
			RateLimits: shellhttp.RateLimits{
				Login:    cfg.RateLimit.Login,
				Register: cfg.RateLimit.Register,
				Recovery: cfg.RateLimit.Recovery,
				Window:   cfg.RateLimit.Window,
			},
			GuardEnabled: cfg.Guard.Enabled,
			CookieSecure: cfg.Session.CookieSecure,
		}, shellhttp.Dependencies{
			Accounts:          resilience.NewAccountService(be.accounts, breaker),
			Identities:        be.accounts,
			Tokens:            factory.TokenService(),
			Revocations:       store.NewRevocationStore(redisCache),
			LoginForms:        store.NewFormStore[forms.Login](redisCache, forms.LoginSchema.Name(), formTTL),
			RegistrationForms: store.NewFormStore[forms.Registration](redisCache, forms.RegistrationSchema.Name(), formTTL),
			RecoveryForms:     store.NewFormStore[forms.Recovery](redisCache, forms.RecoverySchema.Name(), formTTL),
			HealthChecks:      checks,
		})
		if err != nil {
			log.Error(ctx, ErrCreateHTTPServer, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		err = shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return server.Shutdown()
			},
		)
		if err != nil {
			log.Warn(ctx, ErrShutdown, zap.Error(err))
		}

		// Ресурсы закрываются после остановки HTTP сервера.
		err = shutdown.Run(ctx, cfg.Shutdown.GetTimeout(),
			// Закрытие публикации событий.
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingEvents)
				return be.publisher.Close()
			},
			// Закрытие пула Postgres.
			func(ctx context.Context) error {
				if be.db != nil {
					log.Info(ctx, LogClosingPostgres)
					be.db.Close(ctx)
				}
				return nil
			},
			// Закрытие Redis соединения.
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingRedis)
				return redisCache.Close()
			},
		)
		if err != nil {
			log.Warn(ctx, ErrShutdown, zap.Error(err))
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newBackend создает сервис аккаунтов по cfg.Backend.Kind.
func newBackend(ctx context.Context, cfg *config.Config, passwords portServices.PasswordService) (*backend, error) {
	if cfg.Backend.Kind == config.BackendSimulated {
		return &backend{
			accounts:  simulated.NewAccountService(cfg.Submission.Latency, cfg.Submission.RedirectDelay),
			publisher: events.NewNoopPublisher(),
		}, nil
	}

	dsn := cfg.Postgres.GetDSN()
	if err := postgres.Migrate(ctx, dsn, migrations.FS, postgres.Up); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMigrate, err)
	}

	db, err := postgres.New(ctx, dsn, postgres.PoolOptions{
		MinConns:        cfg.Postgres.MinConn,
		MaxConns:        cfg.Postgres.MaxConn,
		MaxConnIdleTime: cfg.Postgres.MaxConnIdleTime,
		ConnectTimeout:  cfg.Postgres.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConnectPostgres, err)
	}

	publisher := events.NewNoopPublisher()
	if cfg.Events.Enabled() {
		publisher, err = events.Connect(ctx, cfg.Events.NATSURL)
		if err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("%s: %w", ErrConnectEvents, err)
		}
	}

	var sender portMail.Sender = mail.NewLogSender()
	if cfg.Mail.Enabled() {
		sender = mail.NewSendGridSender(cfg.Mail.SendGridAPIKey, "", cfg.Mail.FromAddress, cfg.Mail.FromName)
	}

	repos := pgadapter.NewRepositoryFactory(db.Pool())
	accounts := app.NewAccountUseCase(
		repos.UserRepository(),
		repos.ResetTokenRepository(),
		passwords,
		sender,
		publisher,
		app.AccountConfig{
			PublicURL:     cfg.HTTP.PublicURL,
			ResetTokenTTL: cfg.Backend.ResetTokenTTL,
			RedirectDelay: cfg.Submission.RedirectDelay,
		},
	)

	return &backend{accounts: accounts, db: db, publisher: publisher}, nil
}
