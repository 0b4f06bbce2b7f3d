package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"webhook-etl/internal/model"
	"webhook-etl/internal/store"
	"webhook-etl/pkg/router"
)

const defaultRequestLimit = 100

// WebhookHandler manages endpoint configs and exposes their captured requests
type WebhookHandler struct {
	store store.Store
}

// NewWebhookHandler creates a handler over the request store
func NewWebhookHandler(st store.Store) *WebhookHandler {
	return &WebhookHandler{store: st}
}

// CreateWebhook creates or updates an endpoint
// @Summary Create a webhook endpoint
// @Tags webhooks
// @Accept json
// @Produce json
// @Param endpoint body model.EndpointConfig true "Endpoint configuration"
// @Success 201 {object} model.EndpointConfig
// @Failure 400 {object} map[string]interface{}
// @Router /webhooks [post]
func (h *WebhookHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var cfg model.EndpointConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(cfg.Name) == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if cfg.ResponseStatus != 0 && (cfg.ResponseStatus < 100 || cfg.ResponseStatus > 599) {
		WriteError(w, http.StatusBadRequest, "responseStatus must be a valid HTTP status")
		return
	}

	if err := h.store.SaveWebhookConfig(r.Context(), &cfg); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to save endpoint")
		return
	}
	WriteJSON(w, http.StatusCreated, cfg)
}

// ListWebhooks lists endpoints
// @Summary List webhook endpoints
// @Tags webhooks
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /webhooks [get]
func (h *WebhookHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.GetAllWebhookConfigs(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list endpoints")
		return
	}
	if configs == nil {
		configs = []model.EndpointConfig{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"webhooks": configs,
		"count":    len(configs),
	})
}

// ListRequests returns the most recent requests captured on an endpoint
// @Summary List captured requests
// @Tags webhooks
// @Produce json
// @Param id path string true "Endpoint ID"
// @Param limit query int false "Maximum number of requests (default 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /webhooks/{id}/requests [get]
func (h *WebhookHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	id := router.Segment(r, 3)
	if _, err := h.store.GetWebhookConfig(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Endpoint not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load endpoint")
		return
	}

	limit := defaultRequestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reqs, err := h.store.GetRequests(r.Context(), id, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load requests")
		return
	}
	if reqs == nil {
		reqs = []model.CapturedRequest{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"endpointId": id,
		"requests":   reqs,
		"count":      len(reqs),
	})
}
