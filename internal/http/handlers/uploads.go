package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/storage"
)

const maxUploadBytes = 8 << 20

type UploadHandler struct {
	Storage storage.Storage
}

func NewUploadHandler(st storage.Storage) *UploadHandler {
	return &UploadHandler{Storage: st}
}

// POST /api/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("A file is required.", map[string]string{"file": "required"}))
		return
	}
	if fh.Size > maxUploadBytes {
		middleware.Fail(c, apperr.InvalidErr("File is too large.", map[string]string{"file": "max 8 MB"}))
		return
	}
	if ct := fh.Header.Get("Content-Type"); !storage.AllowedImageType(ct) {
		middleware.Fail(c, apperr.InvalidErr("Unsupported file type.", map[string]string{"file": "must be a jpeg, png, webp or gif image"}))
		return
	}

	f, err := fh.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer f.Close()

	res, err := h.Storage.Put(c.Request.Context(), f, storage.PutInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": res.URL, "publicId": res.Key})
}
