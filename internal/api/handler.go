package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/janskibh/netapp-exporter/internal/config"
	"github.com/janskibh/netapp-exporter/internal/metrics"
	"github.com/janskibh/netapp-exporter/internal/ontap"
)

// Sink is what the handler needs from the metric sink: collectors write into
// it and the scrape endpoint renders it.
type Sink interface {
	ontap.Recorder
	prometheus.Gatherer
}

// Handler serves the scrape endpoint, /healthz and the landing page.
type Handler struct {
	sink   Sink
	log    *slog.Logger
	getenv func(string) string
	state  atomic.Pointer[state]
}

// state is everything derived from one configuration.
type state struct {
	cfg       *config.Config
	transport *http.Transport
	exporter  *ontap.Exporter
	mux       *http.ServeMux
}

// New creates a Handler for cfg. sink must outlive the handler: it is shared
// across reloads so counters and gauges survive configuration changes.
func New(cfg *config.Config, sink Sink, log *slog.Logger) (*Handler, error) {
	h := &Handler{sink: sink, log: log, getenv: os.Getenv}
	st, err := h.build(cfg)
	if err != nil {
		return nil, err
	}
	h.state.Store(st)
	return h, nil
}

// Reload switches to cfg for subsequent requests. The previous transport's
// idle connections are closed; requests in flight complete normally. A cfg
// that cannot be served is logged and the current configuration kept.
func (h *Handler) Reload(cfg *config.Config) {
	next, err := h.build(cfg)
	if err != nil {
		h.log.Error("api: reload rejected, keeping previous config", "err", err)
		return
	}
	prev := h.state.Swap(next)
	if prev == nil {
		return
	}
	if prev.cfg.ListenAddress != cfg.ListenAddress ||
		prev.cfg.Namespace != cfg.Namespace ||
		prev.cfg.Log != cfg.Log {
		h.log.Warn("api: listen_address, namespace and log changes take effect after restart")
	}
	prev.transport.CloseIdleConnections()
	h.log.Info("api: configuration reloaded", "metrics_path", cfg.MetricsPath, "target", cfg.Target.Address)
}

func (h *Handler) build(cfg *config.Config) (*state, error) {
	if !strings.HasPrefix(cfg.MetricsPath, "/") || cfg.MetricsPath == config.HealthPath {
		return nil, fmt.Errorf("api: cannot serve metrics on %q", cfg.MetricsPath)
	}
	tr := ontap.NewTransport(cfg.Target)
	st := &state{
		cfg:       cfg,
		transport: tr,
		exporter:  ontap.NewExporter(tr, cfg.Target.Timeout, h.sink),
		mux:       http.NewServeMux(),
	}
	st.mux.HandleFunc(cfg.MetricsPath, h.scrape(st))
	st.mux.HandleFunc(config.HealthPath, h.health)
	if cfg.MetricsPath != "/" {
		st.mux.HandleFunc("/", h.landing(st))
	}
	return st, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.state.Load().mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// scrape runs one collection pass against the resolved target and renders the
// full registry, including series left over from earlier passes.
func (h *Handler) scrape(st *state) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		log := h.log.With("scrape_id", uuid.NewString())
		target := st.cfg.ResolveTarget(overrides(st.cfg, r, log), h.getenv)
		log = log.With("target", target.Address)

		start := time.Now()
		stats := st.exporter.Collect(r.Context(), target, log)
		logSummary(log, stats, time.Since(start))

		if err := metrics.Write(w, r, h.sink); err != nil {
			log.Error("api: render metrics failed", "err", err)
			if errors.Is(err, metrics.ErrGather) {
				jsonErr(w, http.StatusInternalServerError, "gather metrics failed")
			}
		}
	}
}

// health returns GET /healthz. It does not contact the cluster.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok"})
}

var landingPage = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html>
<head><title>NetApp ONTAP Exporter</title></head>
<body>
<h1>NetApp ONTAP Exporter</h1>
<p><a href="{{.}}">Metrics</a></p>
</body>
</html>
`))

// landing serves the index page on / and a JSON 404 elsewhere.
func (h *Handler) landing(st *state) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			jsonErr(w, http.StatusNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		landingPage.Execute(w, st.cfg.MetricsPath) //nolint:errcheck
	}
}

// --- helpers ----------------------------------------------------------------

// overrides extracts the per-request target. The query string wins over the
// Authorization header; query credentials are dropped when the configuration
// forbids them.
func overrides(cfg *config.Config, r *http.Request, log *slog.Logger) config.Overrides {
	q := r.URL.Query()
	o := config.Overrides{Address: q.Get(config.EnvAddress)}

	user, pass := q.Get(config.EnvUsername), q.Get(config.EnvPassword)
	switch {
	case cfg.Scrape.AllowQueryCredentials:
		o.Username, o.Password = user, pass
	case user != "" || pass != "":
		log.Warn("api: ignoring credentials in query string", "allow_query_credentials", false)
	}

	if u, p, ok := r.BasicAuth(); ok {
		o.Username = config.Resolve(o.Username, u)
		o.Password = config.Resolve(o.Password, p)
	}
	return o
}

func logSummary(log *slog.Logger, stats []ontap.Stats, elapsed time.Duration) {
	attrs := make([]any, 0, len(stats)+1)
	attrs = append(attrs, "duration", elapsed)
	for _, s := range stats {
		attrs = append(attrs, slog.Group(s.Kind,
			"listed", s.Listed,
			"recorded", s.Recorded,
			"skipped", s.Skipped,
			"list_failed", s.ListFailed,
			"duration", s.Duration,
		))
	}
	log.Info("api: scrape complete", attrs...)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
