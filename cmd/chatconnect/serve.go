package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatconnect/internal/corpus"
	"chatconnect/internal/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config and PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	a, err := buildApp(cfg, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Knowledge.Watch {
		w, err := corpus.NewWatcher(a.loader, a.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx, a.service.SetKnowledge)
	}

	handler := httpapi.NewRouter(a.service, a.logger, httpapi.Options{
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Status:         a.httpStatus,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", server.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (a *app) httpStatus() httpapi.Status {
	k := a.service.Knowledge()
	return httpapi.Status{
		Provider:   a.provider,
		FAQEntries: len(k.FAQ),
		TreeLoaded: k.HasTree(),
	}
}
