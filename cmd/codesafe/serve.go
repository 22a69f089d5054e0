package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/api"
	"github.com/codewithboateng/codesafe/internal/enhance"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			sc, err := a.scanner()
			if err != nil {
				return err
			}
			s := &api.Server{
				DB:              db,
				UserStore:       db,
				Scanner:         sc,
				Logger:          a.log,
				AllowedOrigins:  a.cfg.Server.AllowedOrigins,
				SessionDuration: a.cfg.Server.SessionTTL,
				MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
			}
			if enh, err := a.enhancer(); err == nil {
				s.Enhancer = enh
			} else if !errors.Is(err, enhance.ErrNotConfigured) {
				return err
			} else {
				a.log.Info("enhancement disabled", "reason", err.Error())
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           s.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				a.log.Info("api listening", "addr", addr, "db", a.cfg.Database.DSN)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			a.log.Info("shutting down")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

// enhancer builds the proxy client from config. The key is read from the
// environment variable named in config and never leaves this process.
func (a *app) enhancer() (*enhance.Client, error) {
	return enhance.New(enhance.Config{
		Endpoint: a.cfg.Enhance.Endpoint,
		Model:    a.cfg.Enhance.Model,
		APIKey:   a.cfg.EnhanceAPIKey(),
		Timeout:  a.cfg.Enhance.Timeout,
	})
}
