package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
)

const (
	workDirPerm   = 0o755
	tempDirPrefix = "upload-"
)

// Service turns uploaded PDFs into plain text. Every upload lives in its own
// temp directory under root for the duration of one request, so concurrent
// requests never touch each other's files.
type Service struct {
	root   string
	logger *zap.Logger
}

// NewService creates the extractor, ensuring root exists.
func NewService(root string, logger *zap.Logger) (*Service, error) {
	if err := os.MkdirAll(root, workDirPerm); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", root, err)
	}
	return &Service{root: root, logger: logger}, nil
}

// Extract stores the upload, runs pdfcpu over it and returns the document
// text. The temp directory is removed on every path out of here; a failed
// removal is logged and swallowed.
func (s *Service) Extract(r io.Reader) (string, error) {
	dir, err := os.MkdirTemp(s.root, tempDirPrefix+"*")
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtraction, "failed to store uploaded file", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("failed to clean up upload dir",
				zap.String("stage", "extract"),
				zap.String("dir", dir),
				zap.Error(rmErr),
			)
		}
	}()

	path := filepath.Join(dir, storedFileName())
	if err := writeFile(path, r); err != nil {
		return "", apperr.Wrap(apperr.KindExtraction, "failed to store uploaded file", err)
	}

	text, err := extractText(path, dir)
	if err != nil {
		s.logger.Warn("extraction failed", zap.String("stage", "extract"), zap.Error(err))
		return "", apperr.New(apperr.KindExtraction, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return "", apperr.New(apperr.KindEmptyText, "No text could be extracted from the PDF")
	}
	return text, nil
}

// SweepStale removes upload temp directories older than maxAge. Live
// requests always hold directories younger than any sane cutoff; what this
// collects are leftovers from crashes.
func (s *Service) SweepStale(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), tempDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove stale upload dir", zap.String("dir", dir), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("removed stale upload dirs", zap.Int("count", removed))
	}
	return nil
}

// storedFileName generates a collision-free name for the stored upload.
func storedFileName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:18] + ".pdf"
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// extractText runs pdfcpu over the stored file and parses every page's
// content stream.
func extractText(path string, dir string) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return "", err
	}

	contentDir := filepath.Join(dir, "content")
	if err := os.MkdirAll(contentDir, workDirPerm); err != nil {
		return "", err
	}
	if err := api.ExtractContentFile(path, contentDir, nil, conf); err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(path), ".pdf")
	var pages []string
	for page := 1; page <= pageCount; page++ {
		contentFile := filepath.Join(contentDir, fmt.Sprintf("%s_Content_page_%d.txt", baseName, page))
		raw, err := os.ReadFile(contentFile)
		if err != nil {
			// pages without a content stream produce no file
			continue
		}
		if text := parsePageContent(string(raw)); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
