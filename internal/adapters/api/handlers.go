package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"go.uber.org/zap"
)

type predictRequest struct {
	Message *string `json:"message"`
}

type predictResponse struct {
	Verdict string `json:"verdict"`
}

type remoteURLRequest struct {
	URL string `json:"url"`
}

type messageView struct {
	ID        int64  `json:"id"`
	Address   string `json:"address"`
	Body      string `json:"body"`
	Date      int64  `json:"date"`
	Direction string `json:"direction"`
	Verdict   string `json:"verdict"`
}

type threadView struct {
	core.ThreadSummary
	HasSpam bool `json:"has_spam"`
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": s.svc.Backend().Kind.String(),
	})
}

// predict scores one message body with the current backend. The request
// and response shapes match what the remote scorer sends and expects.
func (s *Server) predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Message == nil {
		c.JSON(http.StatusBadRequest, errorBody("message is required"))
		return
	}

	verdict := s.svc.Predict(c.Request.Context(), *req.Message)
	c.JSON(http.StatusOK, predictResponse{Verdict: verdict.Label()})
}

func (s *Server) refresh(c *gin.Context) {
	stats, err := s.svc.Refresh(c.Request.Context())
	if err != nil {
		s.logger.Error("Refresh requested over API failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"skipped":    stats.Skipped,
		"scored":     stats.Scored,
		"resolved":   stats.Resolved,
		"unresolved": stats.Unresolved,
	})
}

func (s *Server) threads(c *gin.Context) {
	summaries := s.svc.Threads()
	out := make([]threadView, 0, len(summaries))
	for _, t := range summaries {
		out = append(out, threadView{ThreadSummary: t, HasSpam: t.HasSpam()})
	}
	c.JSON(http.StatusOK, gin.H{"threads": out})
}

func (s *Server) messages(c *gin.Context) {
	address := c.Param("address")
	msgs := s.svc.Messages(address)
	if msgs == nil {
		c.JSON(http.StatusNotFound, errorBody("no thread for address"))
		return
	}

	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageView{
			ID:        m.ID,
			Address:   m.Address,
			Body:      m.Body,
			Date:      m.Date,
			Direction: m.Direction.String(),
			Verdict:   m.Verdict.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "messages": out})
}

func (s *Server) reset(c *gin.Context) {
	if err := s.svc.Reset(c.Request.Context()); err != nil {
		s.logger.Error("Reset requested over API failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// setRemoteURL switches scoring to the remote API at the given URL. An
// empty URL turns remote scoring off.
func (s *Server) setRemoteURL(c *gin.Context) {
	if s.remote == nil {
		c.JSON(http.StatusNotImplemented, errorBody("remote scoring is not configurable"))
		return
	}

	var req remoteURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		s.svc.SetBackend(core.NoBackend())
		c.JSON(http.StatusOK, gin.H{"backend": core.BackendNone.String()})
		return
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid URL"))
		return
	}

	backend, err := s.remote(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	s.svc.SetBackend(backend)
	s.logger.Info("Remote scoring URL updated", zap.String("url", raw))
	c.JSON(http.StatusOK, gin.H{"backend": backend.Kind.String(), "url": raw})
}
