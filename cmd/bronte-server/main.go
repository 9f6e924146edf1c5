// Package main is the entry point for the Bronte blog server.
// Bronte is a blogging platform backend: posts, categories, tags, accounts
// with email activation and federated login, served as a JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/prn-tf/bronte-blog/internal/auth"
	"github.com/prn-tf/bronte-blog/internal/cache/memory"
	rediscache "github.com/prn-tf/bronte-blog/internal/cache/redis"
	"github.com/prn-tf/bronte-blog/internal/config"
	"github.com/prn-tf/bronte-blog/internal/handler"
	"github.com/prn-tf/bronte-blog/internal/identity"
	"github.com/prn-tf/bronte-blog/internal/mail"
	"github.com/prn-tf/bronte-blog/internal/repository"
	"github.com/prn-tf/bronte-blog/internal/repository/postgres"
	"github.com/prn-tf/bronte-blog/internal/repository/sqlite"
	"github.com/prn-tf/bronte-blog/internal/service"
	"github.com/prn-tf/bronte-blog/internal/token"

	"github.com/go-playground/validator/v10"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// repositories bundles the storage layer regardless of driver.
type repositories struct {
	users      repository.UserRepository
	blogs      repository.BlogRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	pinger     handler.Pinger
	close      func()
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("driver", cfg.Database.Driver).
		Msg("starting bronte server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer repos.close()

	// Read cache in front of the blog repository.
	if cfg.Cache.Enabled {
		cache, cleanup, err := newCache(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect cache")
		}
		defer cleanup()
		repos.blogs = repository.NewCachedBlogRepository(repos.blogs, cache, cfg.Cache.TTL, logger)
	}

	tokens := token.NewService(token.Config{
		ActivationSecret: cfg.Auth.ActivationSecret,
		ActivationTTL:    cfg.Auth.ActivationTTL,
		ResetSecret:      cfg.Auth.ResetSecret,
		ResetTTL:         cfg.Auth.ResetTTL,
		SessionSecret:    cfg.Auth.SessionSecret,
		SessionTTL:       cfg.Auth.SessionTTL,
	})

	var verifier identity.Verifier = identity.Disabled{}
	if cfg.Google.ClientID != "" {
		verifier = identity.NewGoogleVerifier(cfg.Google.ClientID, logger)
	}

	var sender mail.Sender = mail.NewNopSender(logger)
	if cfg.Mail.Enabled {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, logger)
	}
	mailer := mail.NewMailer(sender, mail.Config{
		SiteName:   cfg.Site.Name,
		ClientURL:  cfg.Site.ClientURL,
		AdminEmail: cfg.Mail.AdminEmail,
	}, logger)

	authService := service.NewAuthService(repos.users, tokens, verifier, mailer, cfg.Site.ClientURL, logger)
	userService := service.NewUserService(repos.users, repos.blogs, logger)
	blogService := service.NewBlogService(repos.blogs, repos.categories, repos.tags, cfg.Site.Name, logger)
	categoryService := service.NewCategoryService(repos.categories, repos.blogs, logger)
	tagService := service.NewTagService(repos.tags, repos.blogs, logger)
	contactService := service.NewContactService(repos.users, mailer, logger)

	validate := validator.New()
	authMiddleware := auth.NewMiddleware(tokens.Session, repos.users, repos.blogs, cfg.Auth.CookieName, logger)

	var metrics *handler.Metrics
	if cfg.Metrics.Enabled {
		metrics = handler.NewMetrics(prometheus.DefaultRegisterer)
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(authService, validate, cfg.Auth.CookieName, logger),
		UserHandler:     handler.NewUserHandler(userService, logger),
		BlogHandler:     handler.NewBlogHandler(blogService, logger),
		TaxonomyHandler: handler.NewTaxonomyHandler(categoryService, tagService, validate, logger),
		ContactHandler:  handler.NewContactHandler(contactService, validate, logger),
		AuthMiddleware:  authMiddleware,
		Metrics:         metrics,
		DB:              repos.pinger,
		MaxBodySize:     cfg.Server.MaxBodySize,
		RateLimit: handler.RateLimit{
			Enabled:  cfg.RateLimit.Enabled,
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		},
		Logger: logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
}

// openRepositories connects the configured database, runs migrations and
// wires the driver's repositories.
func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			users:      postgres.NewUserRepository(db),
			blogs:      postgres.NewBlogRepository(db),
			categories: postgres.NewCategoryRepository(db),
			tags:       postgres.NewTagRepository(db),
			pinger:     db,
			close:      func() { db.Close() },
		}, nil

	default:
		db, err := sqlite.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			users:      sqlite.NewUserRepository(db),
			blogs:      sqlite.NewBlogRepository(db),
			categories: sqlite.NewCategoryRepository(db),
			tags:       sqlite.NewTagRepository(db),
			pinger:     db,
			close:      func() { db.Close() },
		}, nil
	}
}

// newCache builds the configured blog read cache: Redis when enabled,
// otherwise the in-process cache.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if cfg.Redis.Enabled {
		cache, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { cache.Close() }, nil
	}

	cache := memory.NewCache()
	return cache, cache.Stop, nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
