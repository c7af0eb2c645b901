package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"jogakzip/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ImageController struct {
	uploadDir string
	baseURL   string
	maxBytes  int64
}

func NewImageController(uploadDir, baseURL string, maxBytes int64) *ImageController {
	return &ImageController{
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxBytes:  maxBytes,
	}
}

type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage godoc
// @Summary Upload one image
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file"
// @Success 200 {object} ImageResponse
// @Failure 400 {object} ErrorResponse
// @Router /image [post]
func (ic *ImageController) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxBytes)

	file, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(utils.NewValidationError("No image uploaded"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		_ = c.Error(utils.NewValidationError("Unsupported image type"))
		return
	}

	if err := os.MkdirAll(ic.uploadDir, 0o755); err != nil {
		_ = c.Error(utils.NewInternalError("image.upload", err))
		return
	}

	fileName := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(ic.uploadDir, fileName)); err != nil {
		_ = c.Error(utils.NewInternalError("image.upload", err))
		return
	}

	c.JSON(http.StatusOK, ImageResponse{ImageURL: ic.baseURL + "/uploads/" + fileName})
}
