// Package watermark is the client for the external watermarking service. The
// service takes raw document bytes plus the identity of the administrator
// filing the submission and returns the watermarked bytes with a checksum;
// none of the PDF manipulation happens in this process.
package watermark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wso2/consent-intake-api/internal/intake/model"
	"github.com/wso2/consent-intake-api/internal/system/config"
)

// Applier applies a watermark to a document.
type Applier interface {
	Apply(ctx context.Context, req *Request) (*Result, error)
}

// Request carries the document and the identity to stamp into it. The
// original document checksum is included so the service can embed it in the
// watermark text.
type Request struct {
	DocumentBase64   string          `json:"documentBase64"`
	FileName         string          `json:"fileName"`
	Admin            model.Submitter `json:"admin"`
	OriginalChecksum string          `json:"originalChecksum"`
}

// Result is the watermarking service response.
type Result struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	DocumentBase64 string `json:"documentBase64"`
	Checksum       string `json:"checksum"`
}

// DocumentBytes decodes the watermarked document payload.
func (r *Result) DocumentBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.DocumentBase64)
}

// Client calls the watermarking service over HTTP.
type Client struct {
	httpClient *http.Client
	config     *config.WatermarkConfig
	logger     *logrus.Logger
}

// NewClient creates a new watermark client instance.
func NewClient(cfg *config.WatermarkConfig, logger *logrus.Logger) *Client {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// Apply makes an HTTP POST request to the watermarking endpoint and returns
// the watermarked document.
func (c *Client) Apply(ctx context.Context, request *Request) (*Result, error) {
	url := c.config.GetWatermarkURL()

	jsonData, err := json.Marshal(request)
	if err != nil {
		c.logger.WithError(err).Error("Failed to marshal watermark request")
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		c.logger.WithError(err).Error("Failed to create watermark request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if correlationID, ok := ctx.Value("correlation_id").(string); ok && correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	c.logger.WithFields(logrus.Fields{
		"url":      url,
		"fileName": request.FileName,
		"adminID":  request.Admin.ID,
	}).Debug("Calling watermarking service")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.WithError(err).WithField("duration", duration).Error("Watermarking service call failed")
		return nil, fmt.Errorf("watermarking service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).Error("Failed to read watermark response")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"statusCode": resp.StatusCode,
		"duration":   duration,
	}).Debug("Watermarking service response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"statusCode": resp.StatusCode,
			"response":   string(body),
		}).Warn("Watermarking service returned non-success status")
		return nil, fmt.Errorf("watermarking service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.WithError(err).Error("Failed to unmarshal watermark response")
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.DocumentBase64 == "" || result.Checksum == "" {
		return nil, fmt.Errorf("watermarking service returned an incomplete result")
	}

	return &result, nil
}
