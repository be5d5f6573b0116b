// Package metadata stores and reads wine metadata documents on a content-addressed pinning service.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"winery-backend/internal/domain"
	"winery-backend/internal/metrics"
)

var ErrInvalidCID = errors.New("storage returned an invalid content identifier")

// Store is what the gateway needs from the pinning service.
type Store interface {
	PutJSON(ctx context.Context, doc domain.MetadataDocument) (string, error)
	PutFile(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	URL(cid string) string
}

// HTTPClient is a Store backed by a web3.storage-style upload API.
type HTTPClient struct {
	BaseURL         string
	Token           string
	GatewayTemplate string // fmt template taking the CID, e.g. https://%s.ipfs.w3s.link/
	Client          *http.Client
}

type uploadResponse struct {
	CID string `json:"cid"`
}

// PutJSON uploads doc as a single file named after doc.Name and returns its CID.
func (c *HTTPClient) PutJSON(ctx context.Context, doc domain.MetadataDocument) (cidStr string, err error) {
	defer func() { metrics.RecordUpload("metadata", err == nil) }()
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return c.upload(ctx, FileName(doc.Name), "application/json", bytes.NewReader(body))
}

// PutFile uploads r as-is and returns its CID.
func (c *HTTPClient) PutFile(ctx context.Context, name, contentType string, r io.Reader) (cidStr string, err error) {
	defer func() { metrics.RecordUpload("image", err == nil) }()
	return c.upload(ctx, url.PathEscape(name), contentType, r)
}

// URL derives the retrievable gateway URL of a CID.
func (c *HTTPClient) URL(cidStr string) string {
	tmpl := c.GatewayTemplate
	if tmpl == "" {
		tmpl = "https://%s.ipfs.w3s.link/"
	}
	return fmt.Sprintf(tmpl, cidStr)
}

// FileName is the stored filename of a metadata document called name.
func FileName(name string) string {
	return url.PathEscape(name + ".json")
}

func (c *HTTPClient) upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("storage: STORAGE_API_URL is not set")
	}
	if c.Token == "" {
		return "", fmt.Errorf("storage: WEB3_STORAGE_TOKEN is not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/upload", r)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("X-Name", name)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var data uploadResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("storage response decode: %w", err)
	}
	parsed, err := cid.Decode(data.CID)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidCID, data.CID, err)
	}
	return parsed.String(), nil
}
