package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/vk/bundlegrid/internal/grouping"
	"github.com/vk/bundlegrid/internal/library"
	"github.com/vk/bundlegrid/internal/ordering"
	"github.com/vk/bundlegrid/internal/render"
)

const maxManifestBytes = 4 << 20

// Handler returns the HTTP surface of the app.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/plan", a.planHandler)
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// planHandler computes one plan from the manifest in the request body.
// ?format= (hcl or yaml) or the Content-Type selects the manifest syntax and
// ?output= (json or text) the response.
func (a *App) planHandler(w http.ResponseWriter, r *http.Request) {
	ctx := a.context(r.Context())
	logger := ctxlog.FromContext(ctx).With("remote_addr", r.RemoteAddr)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	output := render.FormatJSON
	if raw := r.URL.Query().Get("output"); raw != "" {
		f, err := render.ParseFormat(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		output = f
	}

	ext, err := manifestExt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxManifestBytes))
	if err != nil {
		http.Error(w, "failed to read request body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	model, err := a.loader.Parse(ctx, src, "request"+ext)
	if err != nil {
		logger.Debug("Rejected manifest.", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan, err := a.Plan(ctx, model)
	if err != nil {
		logger.Info("Plan request failed.", "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", output.ContentType())
	if err := render.Write(w, output, plan); err != nil {
		logger.Error("Failed to write plan response.", "error", err)
	}
}

func manifestExt(r *http.Request) (string, error) {
	if raw := r.URL.Query().Get("format"); raw != "" {
		switch strings.ToLower(raw) {
		case "hcl":
			return ".hcl", nil
		case "yaml", "yml":
			return ".yaml", nil
		}
		return "", fmt.Errorf("unknown manifest format %q", raw)
	}

	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ".yaml", nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("invalid Content-Type: %w", err)
	}
	switch {
	case strings.Contains(mediaType, "hcl"):
		return ".hcl", nil
	case strings.Contains(mediaType, "yaml"), mediaType == "text/plain":
		return ".yaml", nil
	}
	return "", fmt.Errorf("unsupported Content-Type %q", mediaType)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ordering.ErrCycleFound),
		errors.Is(err, library.ErrUnresolvedDependency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, config.ErrInvalidManifest),
		errors.Is(err, library.ErrInvalidBundle),
		errors.Is(err, grouping.ErrUnknownKind),
		errors.Is(err, ordering.ErrInvalidVertex),
		errors.Is(err, ordering.ErrDuplicateVertex):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Serve runs the HTTP server until ctx is done, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Plan server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed after a graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Plan server failed unexpectedly", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down plan server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Plan server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Plan server shut down gracefully.")
	return nil
}
