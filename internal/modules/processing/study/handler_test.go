package study

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(ext TextExtractor, gen ContentGenerator, opts Options) *gin.Engine {
	r := gin.New()
	svc := NewService(ext, gen, opts, zap.NewNop())
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group(""))
	return r
}

// postFile sends a multipart POST; an empty field name sends a form with no
// file part at all.
func postFile(t *testing.T, r http.Handler, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadRejectsNonPDF(t *testing.T) {
	ext := &stubExtractor{}
	r := newTestRouter(ext, &stubGenerator{}, Options{})

	rec := postFile(t, r, "/upload", "file", "notes.txt", []byte("plain text"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid file format, only PDFs allowed"}`, rec.Body.String())
	assert.Zero(t, ext.calls)
}

func TestUploadRequiresFilePart(t *testing.T) {
	r := newTestRouter(&stubExtractor{}, &stubGenerator{}, Options{})

	rec := postFile(t, r, "/upload", "", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "No file uploaded"}`, rec.Body.String())
}

func TestUploadRejectsOversize(t *testing.T) {
	r := newTestRouter(&stubExtractor{}, &stubGenerator{}, Options{MaxUploadSizeMB: 1})

	rec := postFile(t, r, "/upload", "file", "big.pdf", bytes.Repeat([]byte("a"), 1<<20+1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "File too large, maximum size is 1 MB"}`, rec.Body.String())
}

func TestUploadSolveSuccess(t *testing.T) {
	gen := &stubGenerator{raw: `{"Q1":{"question":"What is 2+2?","solution":"4"}}`}
	r := newTestRouter(&stubExtractor{text: "What is 2+2?"}, gen, Options{})

	rec := postFile(t, r, "/upload", "file", "exam.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"solutions": {"Q1": {"question": "What is 2+2?", "solution": "4"}}}`, rec.Body.String())
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "What is 2+2?")
}

func TestGenerateNotesReturnsObjectAsIs(t *testing.T) {
	gen := &stubGenerator{raw: "```json\n{\"notes\":\"Osmosis: diffusion of water.\"}\n```"}
	r := newTestRouter(&stubExtractor{text: "osmosis chapter"}, gen, Options{})

	rec := postFile(t, r, "/generate-notes", "file", "bio.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notes": "Osmosis: diffusion of water."}`, rec.Body.String())
}

func TestUploadEmptyTextIsBadRequest(t *testing.T) {
	ext := &stubExtractor{err: apperr.New(apperr.KindEmptyText, "No text could be extracted from the PDF")}
	gen := &stubGenerator{}
	r := newTestRouter(ext, gen, Options{})

	rec := postFile(t, r, "/upload", "file", "scan.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "No text could be extracted from the PDF"}`, rec.Body.String())
	assert.Empty(t, gen.prompts)
}

func TestUploadMissingCredentialIsServerError(t *testing.T) {
	gen := &stubGenerator{err: apperr.New(apperr.KindConfiguration, "Gemini API key is not configured")}
	r := newTestRouter(&stubExtractor{text: "some text"}, gen, Options{})

	rec := postFile(t, r, "/upload", "file", "exam.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Gemini API key is not configured"}`, rec.Body.String())
}

func TestUploadInvalidModelJSONIsServerError(t *testing.T) {
	gen := &stubGenerator{raw: "no json here"}
	r := newTestRouter(&stubExtractor{text: "text"}, gen, Options{})

	rec := postFile(t, r, "/upload", "file", "exam.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["error"], "Invalid JSON format from Gemini API: "))
}

func TestUploadWrongShapeIsServerError(t *testing.T) {
	gen := &stubGenerator{raw: `{"Q1":{"question":"no solution field"}}`}
	r := newTestRouter(&stubExtractor{text: "text"}, gen, Options{})

	rec := postFile(t, r, "/upload", "file", "exam.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Invalid response format from Gemini API"}`, rec.Body.String())
}
