package gti

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const analysisPollInterval = 20 * time.Second

// ScanFile uploads a file for analysis and returns the analysis ID. The
// upload is shared with the platform's community, matching the behavior of
// the public scanning endpoint.
func (c *Client) ScanFile(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read file %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/files", &buf)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.InfoContext(ctx, "Uploading file for analysis", "filename", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	defer resp.Body.Close()

	parsed, err := decodeResponse(resp, "files")
	if err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", parsed.Error
	}

	var analysis Object
	if err := json.Unmarshal(parsed.Data, &analysis); err != nil {
		return "", fmt.Errorf("decode analysis descriptor: %w", err)
	}
	return analysis.ID, nil
}

// WaitForAnalysis polls the analysis object until its status reaches
// "completed", then returns the final analysis report. It respects context
// cancellation between polls.
func (c *Client) WaitForAnalysis(ctx context.Context, analysisID string) (*Object, error) {
	for {
		obj, err := c.GetObject(ctx, "analyses/"+analysisID, nil)
		if err != nil {
			return nil, err
		}
		if obj.Error != nil {
			return nil, obj.Error
		}

		if status, _ := obj.Attributes["status"].(string); status == "completed" {
			c.logger.InfoContext(ctx, "Analysis completed", "analysis_id", analysisID)
			return obj, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(analysisPollInterval):
		}
	}
}
