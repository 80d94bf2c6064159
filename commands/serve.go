package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"content-qa-cms/config"
	"content-qa-cms/events"
	"content-qa-cms/handlers"
	"content-qa-cms/helper"
	"content-qa-cms/i18n"
	"content-qa-cms/repositories"
	"content-qa-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	serveMigrate    bool
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "migrate the database schema before serving")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log := app.cfg, app.log
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database, cfg.Environment == "development")
	if err != nil {
		return err
	}
	if serveMigrate {
		if err := repositories.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	translator, err := i18n.New()
	if err != nil {
		return err
	}
	validate, trans, err := translator.Validator()
	if err != nil {
		return err
	}

	var publisher events.ChangesetPublisher = events.NopPublisher{}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, changeset events will be dropped until it recovers")
		}
		publisher = events.NewRedisPublisher(rdb, cfg.Redis.Prefix, log)
	}

	tx := repositories.NewTransactor(db)
	router := handlers.NewRouter(handlers.Dependencies{
		Transactor:  tx,
		Repos:       repositories.NewRepositories(db),
		QaStates:    services.NewQaStateService(tx, app.definitions, translator, cfg.Locale, publisher, log),
		Definitions: app.definitions,
		Helper:      &helper.HTTPHelper{Validate: validate, Translator: trans},
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Int("item_types", len(app.definitions.ItemTypes)).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
