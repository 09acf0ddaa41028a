package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) ListPhotos(c *gin.Context) {
	recordID := c.Query("recordId")
	if recordID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "recordId query parameter required"})
		return
	}

	photos := h.svc.GetPhotosForPurchaseOrder(recordID)
	c.JSON(http.StatusOK, gin.H{"photos": photos, "count": len(photos)})
}

func (h HandlerSet) GetPhoto(c *gin.Context) {
	photo, ok := h.svc.GetPhoto(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo})
}

func (h HandlerSet) DeletePhoto(c *gin.Context) {
	id := c.Param("id")
	if !h.svc.DeletePhoto(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": true})
}

type updateTagsRequest struct {
	Tags []string `json:"tags"`
}

func (h HandlerSet) UpdateTags(c *gin.Context) {
	var req updateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid_request"})
		return
	}

	if !h.svc.UpdatePhotoTags(c.Request.Context(), c.Param("id"), req.Tags) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "photo not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) UploadPhoto(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "no upload target configured"})
		return
	}

	id := c.Param("id")
	photo, ok := h.svc.PhotoForUpload(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "photo not found"})
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), &photo, func(percent int) {
		h.log.Debug().Str("photo_id", id).Int("percent", percent).Msg("upload progress")
	})
	if err != nil {
		h.log.Error().Err(err).Str("photo_id", id).Msg("upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	// The adapter never touches the catalog; correlating the URL is ours.
	h.svc.UpdatePhotoRemoteURL(c.Request.Context(), id, url)

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
