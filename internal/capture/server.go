package capture

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"webhook-etl/internal/model"
	"webhook-etl/internal/store"
)

// Server receives arbitrary HTTP calls on /hooks/:webhookId and records them
type Server struct {
	store   store.Store
	maxBody int64
	engine  *gin.Engine
}

// NewServer builds the capture engine. maxBody <= 0 disables the body cap.
func NewServer(st store.Store, maxBody int64) *Server {
	s := &Server{store: st, maxBody: maxBody}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(log.Writer()))
	router.Use(gin.Recovery())

	router.Any("/hooks/:webhookId", s.capture)
	router.Any("/hooks/:webhookId/*path", s.capture)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = router
	return s
}

// Handler returns the gin engine for use in an http.Server
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) capture(c *gin.Context) {
	ctx := c.Request.Context()
	endpointID := c.Param("webhookId")

	cfg, err := s.store.GetWebhookConfig(ctx, endpointID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !cfg.Active) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook endpoint not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load endpoint %s: %v", endpointID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body := c.Request.Body
	if s.maxBody > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	req := &model.CapturedRequest{
		ID:          uuid.New().String(),
		EndpointID:  endpointID,
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Headers:     flatten(c.Request.Header),
		Body:        string(data),
		Query:       flatten(c.Request.URL.Query()),
		Timestamp:   time.Now().UTC(),
		IP:          c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
		ContentType: c.GetHeader("Content-Type"),
		Size:        int64(len(data)),
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		log.Printf("❌ Failed to store request on endpoint %s: %v", endpointID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store request"})
		return
	}

	respond(c, cfg, req.ID)
}

// respond answers with the endpoint's configured status and body
func respond(c *gin.Context, cfg *model.EndpointConfig, requestID string) {
	status := cfg.ResponseStatus
	if status == 0 {
		status = store.DefaultResponseStatus
	}
	if cfg.ResponseBody == "" {
		c.JSON(status, gin.H{"success": true, "requestId": requestID})
		return
	}
	contentType := "text/plain; charset=utf-8"
	if trimmed := strings.TrimSpace(cfg.ResponseBody); strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		contentType = "application/json"
	}
	c.Data(status, contentType, []byte(cfg.ResponseBody))
}

// flatten keeps multi-valued headers and query params as one comma-joined value
func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
