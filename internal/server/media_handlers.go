package server

import (
	"io"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage godoc
// @Summary Upload an image
// @Description Uploads an image for use in posts. The image is normalized to WebP and addressed by content hash.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image file (jpeg, png, gif, or webp)"
// @Success 201 {object} media.Object
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /media [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Unable to read uploaded file"))
	}

	obj, err := s.mediaStore.Save(content, file.Header.Get("Content-Type"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(obj)
}

// GetImage godoc
// @Summary Serve a stored image
// @Description Serves a previously uploaded image by its content ref.
// @Tags media
// @Produce image/webp
// @Param ref path string true "Media ref"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /media/{ref} [get]
func (s *Server) GetImage(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("ref"))
	path, err := s.mediaStore.Resolve(ref)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	c.Set("Content-Type", "image/webp")
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
