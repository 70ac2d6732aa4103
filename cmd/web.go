package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zalepa/wfhsurvey/aggregate"
	"github.com/zalepa/wfhsurvey/figure"
	"github.com/zalepa/wfhsurvey/logger"
	"github.com/zalepa/wfhsurvey/survey"
)

type chartInfo struct {
	Chart string `json:"chart"`
	Title string `json:"title"`
}

type warning struct {
	Column string `json:"column"`
	Code   string `json:"code"`
	Count  int    `json:"count"`
}

type chartResponse struct {
	Chart    string            `json:"chart"`
	Title    string            `json:"title"`
	Table    aggregate.Table   `json:"table"`
	Metrics  aggregate.Metrics `json:"metrics"`
	Warnings []warning         `json:"warnings"`
}

type metadata struct {
	Rows      int       `json:"rows"`
	FirstWave time.Time `json:"first_wave"`
	LastWave  time.Time `json:"last_wave"`
	Columns   []string  `json:"columns"`
	Digest    string    `json:"digest"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errDataUnavailable = errors.New("data unavailable")

// unavailable is the message shown for a failed request: a load failure
// reads "data unavailable", anything else "chart unavailable".
func unavailable(err error) string {
	if errors.Is(err, errDataUnavailable) {
		return "data unavailable"
	}
	return "chart unavailable"
}

// server answers dashboard requests from the tables held in store.
type server struct {
	store   *survey.Store
	path    string
	renders *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// newRouter builds the dashboard handler. Each router gets its own metrics
// registry.
func newRouter(st *survey.Store, path string) http.Handler {
	reg := prometheus.NewRegistry()
	s := &server{
		store: st,
		path:  path,
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfhsurvey_chart_renders_total",
			Help: "Chart requests by chart and outcome.",
		}, []string{"chart", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wfhsurvey_chart_render_seconds",
			Help:    "Time spent aggregating and drawing a chart.",
			Buckets: prometheus.DefBuckets,
		}, []string{"chart"}),
	}
	reg.MustRegister(s.renders, s.latency, collectors.NewGoCollector())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.page)
	r.Get("/chart.png", s.png)
	r.Route("/api", func(r chi.Router) {
		r.Get("/charts", s.listCharts)
		r.Get("/charts/{chart}", s.chart)
		r.Get("/metadata", s.metadata)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return r
}

// result loads the table and runs c, recording the outcome.
func (s *server) result(c aggregate.Chart) (*survey.Table, *aggregate.Result, error) {
	start := time.Now()
	defer func() { s.latency.WithLabelValues(c.String()).Observe(time.Since(start).Seconds()) }()

	tbl, err := s.store.Table(s.path)
	if err != nil {
		s.renders.WithLabelValues(c.String(), "error").Inc()
		logger.Log.Errorw("data unavailable", "path", s.path, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", errDataUnavailable, err)
	}
	res, err := runChart(tbl, c)
	if err != nil {
		s.renders.WithLabelValues(c.String(), "error").Inc()
		logger.Log.Errorw("chart unavailable", "chart", c.String(), "error", err)
		return nil, nil, err
	}
	s.renders.WithLabelValues(c.String(), "ok").Inc()
	return tbl, res, nil
}

// notModified sets the ETag for chart c of tbl and reports whether the
// client already has it.
func notModified(w http.ResponseWriter, r *http.Request, tbl *survey.Table, c aggregate.Chart, variant string) bool {
	etag := `"` + strconv.FormatUint(tbl.Digest(), 16) + "-" + c.String() + "-" + variant + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func (s *server) page(w http.ResponseWriter, r *http.Request) {
	c := aggregate.Parse(r.URL.Query().Get("chart"))
	tbl, res, err := s.result(c)
	if err != nil {
		http.Error(w, unavailable(err), http.StatusServiceUnavailable)
		return
	}
	if notModified(w, r, tbl, c, "html") {
		return
	}
	var buf bytes.Buffer
	if err := figure.WriteHTML(&buf, res); err != nil {
		logger.Log.Errorw("rendering page", "chart", c.String(), "error", err)
		http.Error(w, "chart unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *server) png(w http.ResponseWriter, r *http.Request) {
	c := aggregate.Parse(r.URL.Query().Get("chart"))
	tbl, res, err := s.result(c)
	if err != nil {
		http.Error(w, unavailable(err), http.StatusServiceUnavailable)
		return
	}
	if notModified(w, r, tbl, c, "png") {
		return
	}
	var buf bytes.Buffer
	if err := figure.WritePNG(&buf, res); err != nil {
		logger.Log.Errorw("rendering png", "chart", c.String(), "error", err)
		http.Error(w, "chart unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *server) listCharts(w http.ResponseWriter, r *http.Request) {
	out := make([]chartInfo, 0, len(aggregate.All()))
	for _, c := range aggregate.All() {
		out = append(out, chartInfo{Chart: c.String(), Title: c.Title()})
	}
	render.JSON(w, r, out)
}

func (s *server) chart(w http.ResponseWriter, r *http.Request) {
	c := aggregate.Parse(chi.URLParam(r, "chart"))
	tbl, res, err := s.result(c)
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: unavailable(err)})
		return
	}
	if notModified(w, r, tbl, c, "json") {
		return
	}
	warnings := make([]warning, len(res.Warnings))
	for i, wn := range res.Warnings {
		warnings[i] = warning{Column: wn.Column, Code: wn.Code, Count: wn.Count}
	}
	render.JSON(w, r, chartResponse{
		Chart:    c.String(),
		Title:    c.Title(),
		Table:    res.Table,
		Metrics:  res.Metrics,
		Warnings: warnings,
	})
}

func (s *server) metadata(w http.ResponseWriter, r *http.Request) {
	tbl, err := s.store.Table(s.path)
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: "data unavailable"})
		return
	}
	first, last := tbl.DateRange()
	render.JSON(w, r, metadata{
		Rows:      tbl.Len(),
		FirstWave: first,
		LastWave:  last,
		Columns:   tbl.Columns(),
		Digest:    strconv.FormatUint(tbl.Digest(), 16),
	})
}

// Web implements the "web" subcommand.
func Web(args []string) {
	cfg := mustConfig()
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	cfg.bindFlags(fs)
	cfg.bindServerFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wfhsurvey web [--data archive.zip] [--port 8501]\n\nServe the interactive dashboard. Pick a chart with /?chart=<name>.\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCharts: %s\n", chartNames())
	}
	setup(fs, args, cfg)
	defer logger.Sync()

	mustLoad(cfg.Data)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      newRouter(store, cfg.Data),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Log.Errorw("shutdown", "error", err)
		}
	}()

	logger.Log.Infow("serving", "addr", srv.Addr)
	fmt.Printf("serving on http://localhost%s\n", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
