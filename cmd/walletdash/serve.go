package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	_ "github.com/AlexZinkM/wallet-dashboard/docs"
	"github.com/AlexZinkM/wallet-dashboard/internal/api"
	"github.com/AlexZinkM/wallet-dashboard/internal/balances"
	"github.com/AlexZinkM/wallet-dashboard/internal/client"
	"github.com/AlexZinkM/wallet-dashboard/internal/config"
	"github.com/AlexZinkM/wallet-dashboard/internal/crypto"
	"github.com/AlexZinkM/wallet-dashboard/internal/handler"
	"github.com/AlexZinkM/wallet-dashboard/internal/logger"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
	"github.com/AlexZinkM/wallet-dashboard/internal/view"
	"github.com/AlexZinkM/wallet-dashboard/wallet"
)

// sessionSalt pairs with SESSION_SECRET so restarts derive the same cookie key
var sessionSalt = []byte("walletdash/session-cookie/v1")

const shutdownTimeout = 10 * time.Second

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "Run the web dashboard",
	Action: func(c *cli.Context) error {
		return serve()
	},
}

func serve() error {
	cfg := config.Get()
	log := logger.GetLogger()

	var secret []byte
	if cfg.SessionSecret != "" {
		secret = []byte(cfg.SessionSecret)
	} else {
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}
	sealer, err := crypto.NewSealer(secret, sessionSalt)
	clear(secret)
	if err != nil {
		return err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := client.NewBackendClient(config.GetAPIURL(), cfg.HTTPTimeout)
	book := balances.NewBook(cfg.BalanceTTL)
	if cfg.RedisURL != "" {
		mirror, err := balances.NewRedisMirror(ctx, cfg.RedisURL, cfg.BalanceTTL)
		if err != nil {
			return err
		}
		defer mirror.Close()
		book.WithMirror(mirror)
		log.Info().Msg("mirroring balance snapshots to Redis")
	}
	svc := wallet.NewService(backend, book, cfg.NativeCurrency)

	router := api.SetupRouter(api.Handlers{
		Pages:    handler.NewPageHandler(svc, backend, renderer, cfg.IPFSGateway),
		API:      handler.NewAPIHandler(svc),
		Sessions: session.NewManager(sealer, cfg.SessionCookieSecure),
		Limiter:  api.NewRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
	})

	go book.Run(ctx, cfg.BalanceTTL/2)

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("api", config.GetAPIURL()).Msg("starting dashboard")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
