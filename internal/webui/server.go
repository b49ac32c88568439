// Package webui serves the browser chat surface: an inline HTML shell
// plus a small JSON API for running the agent and deciding pending
// approvals. One agent backs the whole server, so concurrent chat
// requests are serialized by the agent itself.
package webui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"squire/internal/agent"
	"squire/internal/approval"
	"squire/internal/tools"
)

// Runner runs one conversation turn against the agent.
type Runner interface {
	Run(ctx context.Context, input string) (string, agent.RunInfo, error)
}

// Config wires dependencies for the web UI server.
type Config struct {
	Addr       string
	Runner     Runner
	Registry   *tools.Registry
	Approvals  *approval.Handler
	Model      string
	MCPServers []string
}

// Serve starts the web UI server and blocks until the context is
// cancelled or the server fails.
func Serve(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("webui: context is nil")
	}
	if cfg.Addr == "" {
		return errors.New("webui: addr is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}
