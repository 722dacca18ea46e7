// Package estimate exposes the estimator over HTTP. It is a thin shell: all
// edits go through the sanitizer and the state store, the handlers only
// translate JSON.
package estimate

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lbarthe/socwatch/core/logger"
	"github.com/lbarthe/socwatch/core/sanitize"
	"github.com/lbarthe/socwatch/core/settings"
	"github.com/lbarthe/socwatch/core/state"
)

// Handler serves the estimate API backed by a state store.
type Handler struct {
	st  *state.Store
	log logger.Logger
}

// NewRouter builds the gin engine with all estimate routes registered.
func NewRouter(st *state.Store, log logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	h := &Handler{st: st, log: log}
	r.Use(h.requestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/estimate", h.getEstimate)
	api.PUT("/fields/:name", h.putField)
	api.POST("/soc/step", h.stepSoC)
	api.GET("/settings", h.getSettings)
	api.PUT("/settings", h.putSettings)
	return r
}

// requestID tags each request with a correlation id for the logs.
func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Header("X-Request-ID", id)
		if h.log != nil {
			h.log.Debugw("request", map[string]any{
				"id":     id,
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
		}
		c.Next()
	}
}

func (h *Handler) getEstimate(c *gin.Context) {
	snap, est := h.st.Current()
	c.JSON(http.StatusOK, buildPayload(time.Now(), snap, est))
}

type fieldRequest struct {
	Value string `json:"value"`
}

type fieldResponse struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
	AtMax bool    `json:"at_max"`
	Payload
}

func (h *Handler) putField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	field := state.Field(c.Param("name"))
	v, up, err := h.st.SetField(field, req.Value)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fieldResponse{
		Field:   string(field),
		Value:   v,
		Text:    strconv.FormatFloat(v, 'f', -1, 64),
		AtMax:   atMax(field, v),
		Payload: buildPayload(up.Time, up.Snapshot, up.Estimate),
	})
}

// atMax flags entries sitting exactly on their upper bound; the UI shows
// those highlighted. Capacity has no bound.
func atMax(field state.Field, v float64) bool {
	switch field {
	case state.FieldSoC, state.FieldReserve, state.FieldMax:
		return sanitize.AtMax(v, sanitize.PercentMax)
	case state.FieldCharge, state.FieldLoad:
		return sanitize.AtMax(v, sanitize.PowerMax)
	default:
		return false
	}
}

type stepRequest struct {
	Delta float64 `json:"delta"`
}

func (h *Handler) stepSoC(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	soc, up := h.st.StepSoC(req.Delta)
	c.JSON(http.StatusOK, fieldResponse{
		Field:   string(state.FieldSoC),
		Value:   soc,
		Text:    strconv.FormatFloat(soc, 'f', -1, 64),
		AtMax:   sanitize.AtMax(soc, sanitize.PercentMax),
		Payload: buildPayload(up.Time, up.Snapshot, up.Estimate),
	})
}

func (h *Handler) getSettings(c *gin.Context) {
	snap, _ := h.st.Current()
	c.JSON(http.StatusOK, settings.FromSnapshot(snap))
}

func (h *Handler) putSettings(c *gin.Context) {
	var req settings.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, _, err := h.st.SetField(state.FieldCapacity, req.Capacity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, _, err := h.st.SetField(state.FieldReserve, req.Reserve); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	_, up, err := h.st.SetField(state.FieldMax, req.Max)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, buildPayload(up.Time, up.Snapshot, up.Estimate))
}
