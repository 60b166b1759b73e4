package study

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
	"github.com/studykit/core/internal/pkg/response"
)

// Handler exposes the study endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the study endpoints on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.solveQuestions)
	rg.POST("/generate-notes", h.generateNotes)
}

// POST /upload
func (h *Handler) solveQuestions(c *gin.Context) {
	fh, ok := h.formFile(c)
	if !ok {
		return
	}

	result, err := h.svc.SolveQuestions(fh)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{"solutions": result})
}

// POST /generate-notes
func (h *Handler) generateNotes(c *gin.Context) {
	fh, ok := h.formFile(c)
	if !ok {
		return
	}

	result, err := h.svc.GenerateNotes(fh)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn("upload missing file field", zap.String("stage", "validate"), zap.Error(err))
		response.Err(c, apperr.New(apperr.KindValidation, "No file uploaded"))
		return nil, false
	}
	return fh, true
}
