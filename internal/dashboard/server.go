package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/vukdaten/volksfeste/internal/event"
	"github.com/vukdaten/volksfeste/internal/filter"
	"github.com/vukdaten/volksfeste/internal/logger"
)

const (
	// DefaultAddr keeps the dashboard on the local machine
	DefaultAddr = "127.0.0.1:8501"

	DefaultTitle = "Volksfeste Deutschland"

	shutdownTimeout = 10 * time.Second
)

// Options configures the dashboard server
type Options struct {
	Addr  string
	Title string
}

// Server holds the loaded events and the HTTP server.
type Server struct {
	opts       Options
	entries    []*event.Entry
	states     []string
	first      time.Time
	last       time.Time
	page       *template.Template
	router     http.Handler
	httpServer *http.Server
	now        func() time.Time
}

// New creates a server for entries. The entries are not modified.
func New(entries []*event.Entry, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}

	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	first, last := filter.DateBounds(entries)
	s := &Server{
		opts:    opts,
		entries: entries,
		states:  filter.States(entries),
		first:   first,
		last:    last,
		page:    page,
		now:     time.Now,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.opts.Addr
}

// Start listens until Shutdown is called and then returns http.ErrServerClosed.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully. Called before Start, it makes Start
// return immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.Start()
	}()

	logger.Info("Dashboard started", logger.Fields{
		"url":    "http://" + s.opts.Addr,
		"events": len(s.entries),
	})

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving dashboard: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down dashboard", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down dashboard: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// view is the filtered state of one request
type view struct {
	filter *filter.Filter
	mapped []*event.Entry // all criteria but the search text
	listed []*event.Entry // all criteria
}

// view applies the request's filter. Without a date the earliest start is used.
func (s *Server) view(r *http.Request) (*view, error) {
	f, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	if f.From.IsZero() {
		f.From = s.first
	}

	return &view{
		filter: f,
		mapped: f.WithoutSearch().Apply(s.entries),
		listed: f.Apply(s.entries),
	}, nil
}
