package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/deed-cli/internal/apperr"
	"github.com/sells-group/deed-cli/internal/calculator"
	"github.com/sells-group/deed-cli/internal/locale"
	"github.com/sells-group/deed-cli/internal/report"
)

const (
	maxRequestBody  = 10 << 20
	shutdownTimeout = 10 * time.Second
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report rendering and calculator normalization over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		numbers, err := locale.New(cfg.Render.Locale)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(numbers, newLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newLimiter returns nil, meaning unlimited, when rps is not positive.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// newRouter builds the HTTP API. numbers is the default formatter; a
// ?locale= query parameter overrides it per request. A nil limiter disables
// rate limiting.
func newRouter(numbers *locale.Formatter, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if limiter != nil {
		r.Use(rateLimit(limiter))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/render", func(w http.ResponseWriter, r *http.Request) {
		f, ok := requestLocale(w, r, numbers)
		if !ok {
			return
		}
		body, ok := readBody(w, r)
		if !ok {
			return
		}

		rep, err := report.Decode(body)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, string(apperr.KindOf(err)), err)
			return
		}
		writeJSON(w, http.StatusOK, report.Render(rep, report.WithLocale(f)))
	})

	r.Get("/calculators", func(w http.ResponseWriter, r *http.Request) {
		type field struct {
			Name    string   `json:"name"`
			Label   string   `json:"label"`
			Percent bool     `json:"percent"`
			Integer bool     `json:"integer"`
			Min     float64  `json:"min"`
			Max     *float64 `json:"max,omitempty"`
		}
		type calc struct {
			Name     string  `json:"name"`
			Title    string  `json:"title"`
			Endpoint string  `json:"endpoint"`
			Result   string  `json:"result_key"`
			Fields   []field `json:"fields"`
		}

		var out []calc
		for _, name := range calculator.Names() {
			c, _ := calculator.Lookup(name)
			entry := calc{Name: name, Title: c.Title, Endpoint: c.Endpoint, Result: c.ResultKey}
			for _, f := range c.Fields {
				entry.Fields = append(entry.Fields, field{
					Name: f.Name, Label: f.Label, Percent: f.Percent, Integer: f.Integer, Min: f.Min, Max: f.Max,
				})
			}
			out = append(out, entry)
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/calculators/{name}/normalize", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		c, found := calculator.Lookup(name)
		if !found {
			writeError(w, http.StatusNotFound, "not_found", eris.Errorf("unknown calculator %q", name))
			return
		}

		body, ok := readBody(w, r)
		if !ok {
			return
		}
		var entries map[string]any
		if err := json.Unmarshal(body, &entries); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", eris.Wrap(err, "decode fields"))
			return
		}

		in := calculator.NewInput(c)
		for field, v := range entries {
			raw, err := entryString(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_body", eris.Wrapf(err, "field %s", field))
				return
			}
			if err := in.Set(field, raw); err != nil {
				writeError(w, http.StatusBadRequest, "unknown_field", err)
				return
			}
		}

		if check, _ := strconv.ParseBool(r.URL.Query().Get("check")); check {
			if err := in.Validate(); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "invalid_input", err)
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"calculator": c.Kind,
			"endpoint":   c.Endpoint,
			"fields":     in.Normalize(),
		})
	})

	return r
}

// entryString accepts a form entry sent as a JSON string or number.
func entryString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return calculator.FormatDecimal(t), nil
	case nil:
		return "", nil
	default:
		return "", eris.Errorf("unsupported value %v", v)
	}
}

func requestLocale(w http.ResponseWriter, r *http.Request, def *locale.Formatter) (*locale.Formatter, bool) {
	tag := r.URL.Query().Get("locale")
	if tag == "" {
		return def, true
	}
	f, err := locale.New(tag)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_locale", err)
		return nil, false
	}
	return f, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", eris.Wrap(err, "read body"))
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate_limited", eris.New("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
