package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photodoc/internal/models"
)

type createGalleryRequest struct {
	Name          string                   `json:"name" binding:"required"`
	Description   string                   `json:"description"`
	PurchaseOrder *models.PurchaseOrderRef `json:"purchaseOrder,omitempty"`
	Tags          []string                 `json:"tags,omitempty"`
	IsPublic      bool                     `json:"isPublic"`
}

type addPhotoRequest struct {
	PhotoID string `json:"photoId" binding:"required"`
}

func (h HandlerSet) ListGalleries(c *gin.Context) {
	galleries := h.svc.Galleries()
	c.JSON(http.StatusOK, gin.H{"galleries": galleries, "count": len(galleries)})
}

func (h HandlerSet) GetGallery(c *gin.Context) {
	gallery, ok := h.svc.GetGallery(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "gallery not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gallery": gallery})
}

func (h HandlerSet) CreateGallery(c *gin.Context) {
	var req createGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name is required"})
		return
	}

	gallery, err := h.svc.CreatePhotoGallery(c.Request.Context(), req.Name, req.Description, req.PurchaseOrder, req.Tags, req.IsPublic)
	if err != nil {
		h.log.Error().Err(err).Msg("create gallery failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "gallery": gallery})
}

func (h HandlerSet) AddPhotoToGallery(c *gin.Context) {
	var req addPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "photoId is required"})
		return
	}

	if !h.svc.AddPhotoToGallery(c.Request.Context(), c.Param("id"), req.PhotoID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown gallery or photo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
