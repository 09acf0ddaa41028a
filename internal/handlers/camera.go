package handlers

import (
	"bytes"
	"errors"
	"image/jpeg"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"photodoc/internal/camera"
	"photodoc/internal/capture"
	"photodoc/internal/models"
)

type initializeRequest struct {
	FacingMode string `json:"facingMode"`
}

type captureRequest struct {
	AssociatedRecord *models.AssociatedRecord `json:"associatedRecord,omitempty"`
	Tags             []string                 `json:"tags,omitempty"`
	Quality          float64                  `json:"quality,omitempty"`
	IncludeGPS       *bool                    `json:"includeGPS,omitempty"`
	Filename         string                   `json:"filename,omitempty"`
}

func (h HandlerSet) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Capabilities())
}

func (h HandlerSet) RefreshCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.RefreshCapabilities(c.Request.Context()))
}

func (h HandlerSet) InitializeCamera(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request"})
		return
	}

	facing := camera.FacingMode(req.FacingMode)
	if facing == "" {
		facing = camera.FacingBack
	}

	if err := h.svc.InitializeCamera(c.Request.Context(), facing, nil); err != nil {
		if errors.Is(err, camera.ErrCapabilityUnavailable) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"success": false, "error": "no camera available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "facingMode": string(facing)})
}

func (h HandlerSet) CapturePhoto(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request"})
		return
	}

	photo, err := h.svc.CapturePhoto(c.Request.Context(), capture.Options{
		AssociatedRecord: req.AssociatedRecord,
		Tags:             req.Tags,
		Quality:          req.Quality,
		IncludeGPS:       req.IncludeGPS,
		Filename:         req.Filename,
	})
	if err != nil {
		var capErr *capture.CaptureError
		status := http.StatusInternalServerError
		if errors.As(err, &capErr) {
			status = http.StatusConflict
		}
		h.log.Warn().Err(err).Msg("capture failed")
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "photo": photo})
}

func (h HandlerSet) StopCamera(c *gin.Context) {
	h.svc.StopCamera()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) Preview(c *gin.Context) {
	frame, err := h.svc.PreviewFrame(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 80}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "encode failed"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}
