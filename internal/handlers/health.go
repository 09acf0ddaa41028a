package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	CameraActive bool   `json:"cameraActive"`
	Photos       int    `json:"photos"`
	Environment  string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			dbStatus = "error"
			h.log.Error().Err(err).Msg("database ping failed")
		}
	} else {
		dbStatus = "disabled"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:       "ok",
		Database:     dbStatus,
		CameraActive: h.svc.CameraActive(),
		Photos:       h.svc.PhotoCount(),
		Environment:  h.cfg.Environment,
	})
}
