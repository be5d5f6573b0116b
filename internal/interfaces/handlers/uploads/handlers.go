package uploads

import (
	"github.com/gofiber/fiber/v2"

	"winery-backend/internal/application/gateway"
	"winery-backend/internal/interfaces/handlers"
	"winery-backend/internal/pkg/response"
	"winery-backend/internal/pkg/validation"
)

type Handlers struct {
	Gateway *gateway.Gateway
}

// UploadWineImage POST /api/v1/uploads/wine-image (multipart "file") pins the label image.
func (h *Handlers) UploadWineImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing required field: file")
	}
	contentType := fh.Header.Get("Content-Type")
	if !validation.IsImageContentType(contentType) {
		return response.BadRequest(c, "File must be an image")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Could not read file")
	}
	defer f.Close()

	up, err := h.Gateway.UploadImage(c.UserContext(), fh.Filename, contentType, f)
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.SuccessCreated(c, "Image uploaded successfully", up, nil)
}
