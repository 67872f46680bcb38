package evidence

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platformwatch/evidence/internal/metrics"
)

// RegisterRoutes mounts the upload endpoints on the engine root.
func RegisterRoutes(router *gin.Engine, service *Service) {
	handler := &httpHandler{service: service}
	router.POST("/upload", handler.uploadBatch)
	router.GET("/upload", handler.presignUpload)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) uploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrNoFiles.Error()})
		return
	}

	reportID := c.PostForm("reportId")

	result := h.service.ProcessBatch(c.Request.Context(), files, reportID)
	metrics.RecordUpload(result.Uploaded, result.Failed)

	status := http.StatusOK
	if result.Uploaded == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (h *httpHandler) presignUpload(c *gin.Context) {
	filename := c.Query("filename")
	contentType := c.Query("contentType")

	if filename == "" || contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing filename or contentType parameters"})
		return
	}

	auth, err := h.service.PresignUpload(c.Request.Context(), filename, contentType)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, auth)
}
