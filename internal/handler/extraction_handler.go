package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contractocr/internal/export"
	"contractocr/internal/service"
)

// ExtractionHandler handles contract extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Extract handles POST /api/v1/extract. It accepts a multipart contract
// upload (PDF, JPG, or PNG), stores the original, runs OCR and the field
// extraction engine, and returns the stored extraction record.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	extraction, err := h.extractionService.ExtractFromUpload(c.Request.Context(), service.ExtractUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, extraction)
}

// ExtractText handles POST /api/v1/extract/text. It accepts an already
// OCR'd transcript and runs only the field extraction engine.
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}

	extraction, err := h.extractionService.ExtractFromText(c.Request.Context(), req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, extraction)
}

// Reprocess handles POST /api/v1/extractions/:id/reprocess. It re-runs OCR
// and field extraction against the stored original and returns the new
// extraction record.
func (h *ExtractionHandler) Reprocess(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	extraction, err := h.extractionService.Reprocess(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, extraction)
}

// List handles GET /api/v1/extractions
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	extractions, total, err := h.extractionService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, extractions, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	extraction, err := h.extractionService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, extraction)
}

// GetFileURL handles GET /api/v1/extractions/:id/file. It returns a
// presigned download URL for the original uploaded document.
func (h *ExtractionHandler) GetFileURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	url, err := h.extractionService.GetFileURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// DeleteFile handles DELETE /api/v1/extractions/:id/file. It removes the
// stored original from object storage; extraction records stay.
func (h *ExtractionHandler) DeleteFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	if err := h.extractionService.DeleteFile(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": true})
}

// Export handles GET /api/v1/extractions/export?format=csv|xlsx
func (h *ExtractionHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be 'csv' or 'xlsx'")
		return
	}

	offset, limit := pagination(c)
	extractions, _, err := h.extractionService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("extractions-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteXLSX(c.Writer, extractions); err != nil {
			HandleError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteExtractions(extractions); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
}

// pagination reads offset/limit query params with sane bounds.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	return offset, limit
}
