package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dovermoor/cinefetch/internal/formatter"
	"github.com/dovermoor/cinefetch/internal/tasks"
)

// progressBuffer sizes the per-session progress channel. The engine drops
// updates on a full channel, so the buffer just has to outpace the relay
// goroutine's broadcast latency.
const progressBuffer = 64

// downloadTypes maps export formats to the content type served on download.
var downloadTypes = map[string]string{
	formatter.FormatCSV:    "text/csv",
	formatter.FormatJSON:   "application/json",
	formatter.FormatXLSX:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	formatter.FormatSQLite: "application/x-sqlite3",
}

// scrapeRequest mirrors the dashboard form. Absent fields take the same
// defaults the CLI uses.
type scrapeRequest struct {
	Count        int    `form:"count,default=1000"`
	Format       string `form:"format,default=csv"`
	Concurrent   int    `form:"concurrent,default=8"`
	IncludeAdult bool   `form:"include_adult"`
}

func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form payload"})
		return
	}

	if req.Count < 1 || req.Count > 10000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 10000"})
		return
	}
	if req.Concurrent < 1 || req.Concurrent > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "concurrent must be between 1 and 20"})
		return
	}
	format, err := formatter.NormalizeFormat(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("format must be one of: %s", strings.Join(formatter.Formats(), ", ")),
		})
		return
	}

	session := s.sessions.Create(req.Count, req.Concurrent, format, req.IncludeAdult)
	s.logger.Info("dashboard harvest accepted",
		"session", session.ID,
		"target", session.Target,
		"format", session.Format,
		"concurrency", session.Concurrency,
	)

	go s.runHarvest(session.ID)

	c.JSON(http.StatusAccepted, gin.H{"session_id": session.ID})
}

func (s *Server) handleSession(c *gin.Context) {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, sessionJSON(session))
}

func (s *Server) handleAbort(c *gin.Context) {
	session, err := s.sessions.RequestCancel(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.Finished() {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("session already %s", session.Status)})
		return
	}

	s.broadcastStatus(session)
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "status": session.Status})
}

func (s *Server) handleDownload(c *gin.Context) {
	session, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.Status != StatusCompleted || session.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "export is not ready for download"})
		return
	}
	if _, err := os.Stat(session.Filename); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "export file no longer exists"})
		return
	}

	c.Header("Content-Type", downloadTypes[session.Format])
	c.FileAttachment(session.Filename, filepath.Base(session.Filename))
}

// runHarvest drives one session to a terminal status, relaying engine
// progress to WebSocket clients along the way. Runs in its own goroutine.
func (s *Server) runHarvest(id string) {
	snap, err := s.sessions.Get(id)
	if err != nil {
		return
	}

	if session, ok := s.sessions.SetRunning(id); ok {
		s.broadcastStatus(session)
	}

	progress := make(chan tasks.ProgressUpdate, progressBuffer)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progress {
			s.relayProgress(id, update)
		}
	}()

	opts := tasks.HarvestOpts{
		TargetCount:  snap.Target,
		Concurrency:  snap.Concurrency,
		IncludeAdult: snap.IncludeAdult,
		Cancel:       func() bool { return s.sessions.CancelRequested(id) },
	}

	result, runErr := s.engine.Run(context.Background(), progress, opts)
	close(progress)
	<-drained

	switch {
	case runErr != nil:
		reason := runErr.Error()
		found, skipped := 0, snap.Target
		if result != nil {
			found, skipped = result.Found, result.Skipped
			if result.Reason != "" {
				reason = result.Reason
			}
		}
		s.finishSession(id, StatusError, found, skipped, "", reason)

	case result.Status == "cancelled":
		s.finishSession(id, StatusCancelled, result.Found, result.Skipped, "", "")

	case result.Found == 0:
		s.finishSession(id, StatusError, 0, result.Skipped, "", "no movies collected: check your API key and connection")

	default:
		path := filepath.Join(s.outputDir, exportName(id, snap.Format))
		if err := formatter.WriteDataset(path, snap.Format, result.Movies); err != nil {
			s.finishSession(id, StatusError, result.Found, result.Skipped, "", fmt.Sprintf("failed to write dataset: %v", err))
			return
		}
		s.finishSession(id, StatusCompleted, result.Found, result.Skipped, path, "")
	}
}

// relayProgress translates engine updates into broadcast frames. Accumulation
// steps carry the running total directly; batch boundaries re-emit it so
// clients catch up even when accumulation skipped their stride.
func (s *Server) relayProgress(id string, update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Accumulate:
		s.broadcastProgress(id, update.Step, update.Total)
	case tasks.FetchPages:
		if delta, ok := update.Data.(tasks.BatchDelta); ok {
			s.broadcastProgress(id, delta.Found, delta.Target)
		}
	}
}

func (s *Server) broadcastProgress(id string, scraped, target int) {
	session, ok := s.sessions.RecordScraped(id, scraped)
	if !ok {
		return
	}

	s.hub.BroadcastJSON(progressFrame{
		Type:      frameProgressUpdate,
		SessionID: id,
		Scraped:   session.Scraped,
		Total:     target,
		Progress:  session.Progress(),
	})
}

func (s *Server) broadcastStatus(session Session) {
	s.hub.BroadcastJSON(sessionFrame{
		Type:      frameSessionUpdate,
		SessionID: session.ID,
		Status:    session.Status,
		Scraped:   session.Scraped,
		Skipped:   session.Skipped,
		Filename:  downloadName(session.Filename),
		Error:     session.Error,
	})
}

func (s *Server) finishSession(id, status string, found, skipped int, path, reason string) {
	session, ok := s.sessions.Finish(id, status, found, skipped, path, reason)
	if !ok {
		return
	}

	s.broadcastStatus(session)
	s.logger.Info("dashboard harvest finished",
		"session", id,
		"status", session.Status,
		"found", session.Scraped,
		"skipped", session.Skipped,
	)
}

// sessionJSON renders the session detail payload.
func sessionJSON(s Session) gin.H {
	return gin.H{
		"session_id":      s.ID,
		"status":          s.Status,
		"target":          s.Target,
		"scraped":         s.Scraped,
		"skipped":         s.Skipped,
		"progress":        s.Progress(),
		"format":          s.Format,
		"filename":        downloadName(s.Filename),
		"error":           s.Error,
		"elapsed_seconds": s.Elapsed(),
	}
}

// exportName builds the timestamped file name for a session's export.
func exportName(id, format string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	ts := time.Now().Format("20060102_150405")
	return fmt.Sprintf("movies_%s_%s.%s", ts, short, formatter.ExtensionFor(format))
}

// downloadName strips the server-side directory from an export path.
func downloadName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
