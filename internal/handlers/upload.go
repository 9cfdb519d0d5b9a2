package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/images"
)

// UploadImage accepts a single image file and returns its hosted URL.
func UploadImage(uploads images.Uploader, folder string, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uploads == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "image hosting is not configured"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no file uploaded"})
			return
		}

		if err := validateImageFile(file.Filename, file.Size); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "could not read file"})
			return
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		url, err := uploads.Upload(ctx, src, folder)
		if err != nil {
			log.Println("[UPLOAD] [ERROR] upload failed:", err)
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "upload failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
	}
}
