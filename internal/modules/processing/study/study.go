package study

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
)

const (
	defaultMaxUploadSizeMB = 5
	defaultPromptMaxChars  = 8000
)

// Service orchestrates the upload → extract → prompt → model → decode
// pipeline. It holds no per-request state; everything request-scoped lives
// on the stack or in the extractor's temp directory.
type Service struct {
	extractor       TextExtractor
	generator       ContentGenerator
	maxUploadSizeMB int
	promptMaxChars  int
	logger          *zap.Logger
}

// Options bound the pipeline. Zero values fall back to the defaults.
type Options struct {
	MaxUploadSizeMB int
	PromptMaxChars  int
}

// NewService creates a Service.
func NewService(extractor TextExtractor, generator ContentGenerator, opts Options, logger *zap.Logger) *Service {
	if opts.MaxUploadSizeMB <= 0 {
		opts.MaxUploadSizeMB = defaultMaxUploadSizeMB
	}
	if opts.PromptMaxChars <= 0 {
		opts.PromptMaxChars = defaultPromptMaxChars
	}
	return &Service{
		extractor:       extractor,
		generator:       generator,
		maxUploadSizeMB: opts.MaxUploadSizeMB,
		promptMaxChars:  opts.PromptMaxChars,
		logger:          logger,
	}
}

// SolveQuestions runs the pipeline for the solve-questions task.
func (s *Service) SolveQuestions(fh *multipart.FileHeader) (map[string]interface{}, error) {
	return s.process(TaskSolveQuestions, fh)
}

// GenerateNotes runs the pipeline for the generate-notes task.
func (s *Service) GenerateNotes(fh *multipart.FileHeader) (map[string]interface{}, error) {
	return s.process(TaskGenerateNotes, fh)
}

func (s *Service) process(kind TaskKind, fh *multipart.FileHeader) (map[string]interface{}, error) {
	if err := s.ValidateUpload(fh.Filename, fh.Size); err != nil {
		s.logger.Warn("upload rejected",
			zap.String("stage", "validate"),
			zap.String("kind", string(kind)),
			zap.String("filename", fh.Filename),
			zap.Int64("size", fh.Size),
			zap.Error(err),
		)
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		s.logger.Warn("upload open failed", zap.String("stage", "validate"), zap.Error(err))
		return nil, apperr.Wrap(apperr.KindExtraction, "failed to read uploaded file", err)
	}
	defer f.Close()

	// extractor and generator log their own failures with stage context
	text, err := s.extractor.Extract(f)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("text extracted", zap.String("kind", string(kind)), zap.Int("chars", len(text)))

	prompt := BuildPrompt(kind, text, s.promptMaxChars)

	raw, err := s.generator.GenerateContent(prompt)
	if err != nil {
		return nil, err
	}

	result, err := decodeResult(kind, raw)
	if err != nil {
		s.logger.Warn("model result rejected",
			zap.String("stage", "decode"),
			zap.String("kind", string(kind)),
			zap.String("raw", raw),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

// ValidateUpload enforces the upload contract before any file handling: a
// filename must be present, carry a .pdf extension (case-insensitive), and
// the declared size must not exceed the cap. Runs off the multipart header
// alone; nothing is read from the stream.
func (s *Service) ValidateUpload(filename string, size int64) error {
	trimmed := strings.TrimSpace(filename)
	if trimmed == "" {
		return apperr.New(apperr.KindValidation, "No file selected")
	}
	if strings.ToLower(filepath.Ext(trimmed)) != ".pdf" {
		return apperr.New(apperr.KindValidation, "Invalid file format, only PDFs allowed")
	}
	if size > int64(s.maxUploadSizeMB)<<20 {
		return apperr.New(apperr.KindValidation, fmt.Sprintf("File too large, maximum size is %d MB", s.maxUploadSizeMB))
	}
	return nil
}
