package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fieldsales/backend/internal/application/ingest"
	"github.com/fieldsales/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart field carrying the file
const uploadField = "file"

// SalesUploadHandler serves the upload endpoints
type SalesUploadHandler struct {
	BaseHandler
	ingest *ingest.Service
}

// NewSalesUploadHandler creates a new SalesUploadHandler
func NewSalesUploadHandler(svc *ingest.Service) *SalesUploadHandler {
	return &SalesUploadHandler{ingest: svc}
}

// readUpload loads the multipart file. ok is false once a response is written.
func (h *SalesUploadHandler) readUpload(c *gin.Context) (ingest.Upload, bool) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return ingest.Upload{}, false
		}
		h.BadRequest(c, "No file uploaded")
		return ingest.Upload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to open upload: %w", err))
		return ingest.Upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to read upload: %w", err))
		return ingest.Upload{}, false
	}
	return ingest.Upload{FileName: fh.Filename, Data: data}, true
}

func upload[T any](h *SalesUploadHandler, c *gin.Context, store func(context.Context, ingest.Upload) (T, error)) {
	u, ok := h.readUpload(c)
	if !ok {
		return
	}
	res, err := store(c.Request.Context(), u)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}

// UploadRecords handles POST /sales/records/upload
func (h *SalesUploadHandler) UploadRecords(c *gin.Context) {
	upload(h, c, h.ingest.UploadRecords)
}

// UploadModelReferences handles POST /sales/models/upload
func (h *SalesUploadHandler) UploadModelReferences(c *gin.Context) {
	upload(h, c, h.ingest.UploadModelReferences)
}

// UploadChannelTargets handles POST /sales/targets/upload
func (h *SalesUploadHandler) UploadChannelTargets(c *gin.Context) {
	upload(h, c, h.ingest.UploadChannelTargets)
}

// UploadEmployees handles POST /sales/employees/upload
func (h *SalesUploadHandler) UploadEmployees(c *gin.Context) {
	upload(h, c, h.ingest.UploadEmployees)
}
