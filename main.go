package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"modelchat/internal/api"
	"modelchat/internal/catalog"
	"modelchat/internal/config"
	"modelchat/internal/conversation"
	"modelchat/internal/redis"
	"modelchat/internal/render"
	"modelchat/internal/service/ai"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("modelchat stopped")
	}
}

type serveOptions struct {
	configPath string
	addr       string
	provider   string
}

func newRootCommand() *cobra.Command {
	opts := &serveOptions{}
	serve := func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd.Context(), opts)
	}
	root := &cobra.Command{
		Use:           "modelchat",
		Short:         "Chat backend for the 3D model subject browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  serve,
	}
	for _, cmd := range []*cobra.Command{root, serveCmd} {
		cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config.json (default $MODELCHAT_CONFIG or ./config.json)")
		cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides basic_config.server_address")
		cmd.Flags().StringVar(&opts.provider, "provider", "", "provider to use, overrides basic_config.default_provider")
	}
	root.AddCommand(serveCmd)
	return root
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func runServer(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath, opts.provider)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	setupLogging(cfg.BasicConfig.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	providerName, providerCfg, err := cfg.Provider("")
	if err != nil {
		return err
	}
	remote, err := ai.NewRemote(ctx, providerName, providerCfg)
	if err != nil {
		return errors.Wrap(err, "init remote model")
	}

	managerOpts := []conversation.Option{
		conversation.WithIdleTTL(time.Duration(cfg.BasicConfig.SessionIdleMinutes) * time.Minute),
	}
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return errors.Wrap(err, "create redis client")
		}
		defer rdb.Close()
		managerOpts = append(managerOpts, conversation.WithRedis(rdb))
		log.Info().Str("host", cfg.Redis.Host).Int("port", cfg.Redis.Port).Msg("transcript mirror enabled")
	}
	conversations := conversation.NewManager(remote, managerOpts...)

	handlers := api.NewHandler(catalog.Default(), conversations, render.NewRenderer())
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if opts.addr != "" {
		addr = opts.addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return conversations.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("provider", providerName).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
