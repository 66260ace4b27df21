package replay

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Server is a stand-in for the sheet agent backend. It answers every command
// with its script, one word at a time.
type Server struct {
	script Script
	delay  time.Duration
	path   string
	router *gin.Engine
	log    *logger.Logger
}

type Option func(*Server)

// WithDelay sets the pause between streamed words
func WithDelay(d time.Duration) Option {
	return func(s *Server) {
		s.delay = d
	}
}

// WithPath sets the route that accepts commands
func WithPath(path string) Option {
	return func(s *Server) {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		s.path = path
	}
}

func NewServer(script Script, opts ...Option) *Server {
	s := &Server{
		script: script,
		path:   "/act",
		log:    logger.WithComponent("replay"),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.GET("/", s.home)
	router.POST(s.path, s.act)
	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Replay backend listening", "addr", addr, "path", s.path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "replay backend stopped")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "replay backend shutdown")
		}
		s.log.Info("Replay backend stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<h1>Hello, World!</h1>"))
}

func (s *Server) act(c *gin.Context) {
	var cmd stream.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(cmd.TaskPrompt) == "" {
		c.String(http.StatusBadRequest, "Please provide a task!")
		return
	}
	if strings.TrimSpace(cmd.SheetID) == "" {
		c.String(http.StatusBadRequest, "No sheet ID provided")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming not supported")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	words := s.script.Words(cmd.TaskPrompt)
	for i, word := range words {
		if i > 0 {
			word = stream.TokenSeparator + word
		}
		if _, err := c.Writer.WriteString(word); err != nil {
			s.log.Warn("Client went away", "sheet_id", cmd.SheetID, "error", err.Error())
			return
		}
		flusher.Flush()

		if s.delay > 0 && i < len(words)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay):
			}
		}
	}
	s.log.Debug("Streamed scripted answer", "sheet_id", cmd.SheetID, "words", len(words))
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
