package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/minhlq/resume-ocr/internal/common"
)

// Recognizer is the capability the pipeline depends on: one page image in,
// ordered text lines out. Line order is meaningful downstream (label line
// followed by value line), so implementations must preserve the provider's
// reading order.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) ([]string, error)
}

// CredentialChecker is implemented by recognizers that can verify their
// credentials locally, letting the pipeline refuse a request before any
// page is submitted.
type CredentialChecker interface {
	CheckCredentials() error
}

// Client calls the Google Cloud Vision images:annotate endpoint with
// DOCUMENT_TEXT_DETECTION. One call per page image, no retries.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(cfg common.VisionConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://vision.googleapis.com/v1/images:annotate"
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// CheckCredentials reports whether the client has a usable credential.
func (c *Client) CheckCredentials() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: GOOGLE_VISION_API_KEY is not set", common.ErrProviderAuth)
	}
	return nil
}

// Recognize submits one page image and returns its text lines in the
// provider's reading order. A provider "no text found" result is not an
// error: it yields an empty slice.
func (c *Client) Recognize(ctx context.Context, imagePath string) ([]string, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	body := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(img)},
			Features: []feature{{Type: featureDocumentTextDetection}},
		}},
	}

	raw, status, err := sendJSON(ctx, c.http, c.endpoint+"?key="+url.QueryEscape(c.apiKey), body, c.logger)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d", common.ErrProviderAuth, status)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrProviderRequest, err)
	}

	var resp annotateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", common.ErrProviderRequest, err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}

	page := resp.Responses[0]
	if page.Error != nil {
		if page.Error.Status == "PERMISSION_DENIED" || page.Error.Status == "UNAUTHENTICATED" {
			return nil, fmt.Errorf("%w: %s", common.ErrProviderAuth, page.Error.Message)
		}
		return nil, fmt.Errorf("%w: %s: %s", common.ErrProviderRequest, page.Error.Status, page.Error.Message)
	}

	if page.FullTextAnnotation != nil && len(page.FullTextAnnotation.Pages) > 0 {
		return LinesFromAnnotation(page.FullTextAnnotation), nil
	}
	if page.FullTextAnnotation != nil && page.FullTextAnnotation.Text != "" {
		return splitLines(page.FullTextAnnotation.Text), nil
	}
	if len(page.TextAnnotations) > 0 {
		return splitLines(page.TextAnnotations[0].Description), nil
	}

	c.logger.Info("vision.recognize.empty", "image", imagePath)
	return nil, nil
}

func splitLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return out
}
