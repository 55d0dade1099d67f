// Package gateway serves the queue over HTTP with the routes and messages of
// the original service desk API.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const ProductionEnv = "production"

// queueDesk is the part of desk.Desk the routes need.
type queueDesk interface {
	Enqueue(ctx context.Context, name, class string) (fila.Entry, error)
	ServeNext(ctx context.Context) (fila.ServedRecord, fila.Outcome)
	RemoveAt(ctx context.Context, position int) (fila.Entry, error)
	GetAt(position int) (fila.Entry, error)
	ListPending() []fila.Entry
	ListServed() []fila.ServedRecord
	Stats() (pending, served int)
}

var _ queueDesk = (*desk.Desk)(nil)

type Options struct {
	AppEnv string
	// Location is used to render timestamps. Defaults to America/Sao_Paulo.
	Location        *time.Location
	RateLimit       RateLimitOptions
	ShutdownTimeout time.Duration
}

type Server struct {
	engine  *gin.Engine
	desk    queueDesk
	loc     *time.Location
	limiter *limiterStore
	opts    Options
}

func New(d queueDesk, opts Options) (*Server, error) {
	if opts.AppEnv == ProductionEnv {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load timezone %s", DefaultTimezone)
		}
		opts.Location = loc
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine: r,
		desk:   d,
		loc:    opts.Location,
		opts:   opts,
	}
	if opts.RateLimit.Enabled {
		if opts.RateLimit.RPS <= 0 {
			return nil, fmt.Errorf("rate limit rps must be positive, got %v", opts.RateLimit.RPS)
		}
		s.limiter = newLimiterStore(opts.RateLimit)
		r.Use(rateLimit(s.limiter, opts.RateLimit.KeyHeader))
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/fila", s.listPending)
	s.engine.GET("/fila/:posicao", s.getEntry)
	s.engine.POST("/fila", s.enqueue)
	s.engine.PUT("/fila", s.serveNext)
	s.engine.DELETE("/fila/:posicao", s.removeEntry)
	s.engine.GET("/atendimentos", s.listServed)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve blocks until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.limiter != nil {
		s.limiter.startJanitor(ctx)
	}

	log.WithField("address", address).Info("REST server starting")
	srvError := make(chan error, 1)
	go func() {
		srvError <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("REST server is shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-srvError:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "rest server failed")
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Error("Request failed")
			return
		}
		log.WithFields(fields).Debug("Request handled")
	}
}
