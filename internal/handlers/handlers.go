package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"photodoc/internal/config"
	"photodoc/internal/service"
	"photodoc/internal/store"
	"photodoc/internal/upload"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	svc      *service.Service
	repo     *store.SQLiteRepository
	uploader upload.Uploader
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc *service.Service, repo *store.SQLiteRepository, uploader upload.Uploader) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		svc:      svc,
		repo:     repo,
		uploader: uploader,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		cam := v1.Group("/camera")
		cam.GET("/capabilities", h.Capabilities)
		cam.POST("/capabilities/refresh", h.RefreshCapabilities)
		cam.POST("/initialize", h.InitializeCamera)
		cam.POST("/capture", h.CapturePhoto)
		cam.POST("/stop", h.StopCamera)
		cam.GET("/preview", h.Preview)

		photos := v1.Group("/photos")
		photos.GET("", h.ListPhotos)
		photos.GET("/:id", h.GetPhoto)
		photos.DELETE("/:id", h.DeletePhoto)
		photos.PUT("/:id/tags", h.UpdateTags)
		photos.POST("/:id/upload", h.UploadPhoto)

		galleries := v1.Group("/galleries")
		galleries.GET("", h.ListGalleries)
		galleries.GET("/:id", h.GetGallery)
		galleries.POST("", h.CreateGallery)
		galleries.POST("/:id/photos", h.AddPhotoToGallery)
	}
}
