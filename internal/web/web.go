// package web implements the browser dashboard for launching and monitoring harvests
package web

import (
	_ "embed"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/dovermoor/cinefetch/internal/shared"
	"github.com/dovermoor/cinefetch/internal/tasks"
)

//go:embed index.html
var indexPage []byte

// Server wires the harvest engine, the session table, and the WebSocket hub
// behind the dashboard routes. One Server instance backs one listener.
type Server struct {
	engine    tasks.HarvestEngine
	sessions  *SessionManager
	hub       *Hub
	logger    *log.Logger
	outputDir string
}

// NewServer creates a dashboard server writing session exports under outputDir.
// An empty outputDir means the current working directory.
func NewServer(engine tasks.HarvestEngine, logger *log.Logger, outputDir string) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if outputDir == "" {
		outputDir = "."
	}

	return &Server{
		engine:    engine,
		sessions:  NewSessionManager(),
		hub:       NewHub(),
		logger:    logger,
		outputDir: outputDir,
	}
}

// Routes builds the gin engine with every dashboard route registered.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleIndex)
	router.GET("/ws", s.handleWS)

	api := router.Group("/api")
	api.POST("/scrape", s.handleScrape)
	api.GET("/sessions/:id", s.handleSession)
	api.POST("/sessions/:id/abort", s.handleAbort)
	api.GET("/download/:id", s.handleDownload)

	return router
}

// Hub exposes the broadcast hub, mainly so the serve command can report
// connected client counts.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}
