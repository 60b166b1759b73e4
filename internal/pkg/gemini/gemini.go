package gemini

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studykit/core/internal/pkg/apperr"
)

const defaultTimeout = 30 * time.Second

// Config carries the upstream endpoint settings.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// Client calls a generateContent endpoint. One attempt per call, bounded by
// the configured timeout. Inbound request cancellation is not propagated:
// once a call starts it runs to completion even when the requesting client
// disconnects.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

// GenerateContent sends the prompt upstream and returns the model's raw text
// reply.
func (c *Client) GenerateContent(prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.logger.Error("gemini credential missing", zap.String("stage", "model_call"))
		return "", apperr.New(apperr.KindConfiguration, "Gemini API key is not configured")
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []requestContent{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, "Gemini API request failed", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.requestURL(), bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, "Gemini API request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("gemini request failed", zap.String("stage", "model_call"), zap.Error(err))
		return "", apperr.Wrap(apperr.KindTransport, "Gemini API request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("gemini response read failed", zap.String("stage", "model_call"), zap.Error(err))
		return "", apperr.Wrap(apperr.KindTransport, "Gemini API request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("gemini upstream error",
			zap.String("stage", "model_call"),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return "", apperr.New(apperr.KindUpstream, upstreamErrorMessage(respBody))
	}

	text, ok := candidateText(respBody)
	if !ok {
		c.logger.Warn("gemini response missing content",
			zap.String("stage", "model_call"),
			zap.ByteString("body", respBody),
		)
		return "", apperr.New(apperr.KindMalformedUpstream, "No content returned from Gemini API")
	}
	return text, nil
}

func (c *Client) requestURL() string {
	endpoint := c.cfg.Endpoint
	if model := strings.TrimSpace(c.cfg.Model); model != "" {
		endpoint += "/models/" + model + ":generateContent"
	}
	return endpoint + "?key=" + url.QueryEscape(c.cfg.APIKey)
}

func upstreamErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return msg
		}
	}
	return "Gemini API request failed"
}

// candidateText digs out candidates[0].content.parts[0].text. A present but
// empty text node counts as content; whether it decodes is the caller's
// concern.
func candidateText(body []byte) (string, bool) {
	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text *string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := payload.Candidates[0].Content.Parts[0].Text
	if text == nil {
		return "", false
	}
	return *text, true
}
