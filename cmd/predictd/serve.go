package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	api "github.com/mind-engage/income-predictor/internal/api/http"
	authmw "github.com/mind-engage/income-predictor/internal/auth/middleware"
	"github.com/mind-engage/income-predictor/internal/predict"
	"github.com/mind-engage/income-predictor/internal/storage"
)

const (
	formTokenTTL    = 2 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http_addr)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	if a.cfg.UsingDefaultSecret() {
		a.log.Warn("SECRET_KEY is not set, using the built-in default")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, ready, err := a.handler(ctx)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.run(ctx, ln, h, ready)
}

// handler loads the pipeline and builds the router. /readyz stays unready
// until run has a bound listener.
func (a *app) handler(ctx context.Context) (http.Handler, *atomic.Bool, error) {
	provider, err := a.provider(ctx)
	if err != nil {
		return nil, nil, err
	}
	var tokens *authmw.FormTokens
	if a.cfg.EnableFormToken {
		if tokens, err = authmw.NewFormTokens(a.cfg.SecretKey, formTokenTTL); err != nil {
			return nil, nil, err
		}
	}
	ready := &atomic.Bool{}
	h := api.NewRouter(
		api.Deps{Provider: provider, Tokens: tokens, Log: a.log},
		api.RouterOptions{CORSOrigins: a.cfg.CORSOrigins, Timeout: a.cfg.RequestTimeout, Ready: ready},
	)
	return h, ready, nil
}

// run serves on ln until ctx is done, then drains in-flight requests.
func (a *app) run(ctx context.Context, ln net.Listener, h http.Handler, ready *atomic.Bool) error {
	log := a.log
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", ln.Addr().String()),
			zap.Bool("form_token", a.cfg.EnableFormToken),
			zap.Bool("reload_per_request", a.cfg.ReloadPerRequest),
		)
		ready.Store(true)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ready.Store(false)
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// provider loads the artifacts once. In reload mode the first load only
// checks them and every request loads again.
func (a *app) provider(ctx context.Context) (predict.Provider, error) {
	store, err := storage.NewFSStore(a.cfg.ArtifactDir)
	if err != nil {
		return nil, err
	}
	src := a.sources()
	p, err := predict.Load(ctx, store, src, a.log)
	if err != nil {
		return nil, err
	}
	if a.cfg.ReloadPerRequest {
		return predict.Reloading{Store: store, Sources: src, Log: a.log}, nil
	}
	return predict.Static{P: p}, nil
}

func (a *app) sources() predict.Sources {
	return predict.Sources{ScalerKey: a.cfg.ScalerKey, ModelKey: a.cfg.ModelKey, SchemaKey: a.cfg.SchemaKey}
}
