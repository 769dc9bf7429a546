package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkov/bookcatalog/internal/entities"
)

const defaultTimeout = 10 * time.Second

// Client talks to a jsonbin.io-style document endpoint. The whole book
// collection lives in a single bin whose record is a JSON array; reads fetch
// the full document and writes overwrite it entirely.
type Client struct {
	httpClient *http.Client
	baseURL    string
	binID      string
	apiKey     string
}

// Config carries the per-deployment bin coordinates.
type Config struct {
	BaseURL string
	BinID   string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a document store client bound to one bin.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		binID:      cfg.BinID,
		apiKey:     cfg.APIKey,
	}
}

// binDocument is the jsonbin response envelope. The record holds whatever was
// last written to the bin; its shape is not trusted here and is normalized by
// the repository.
type binDocument struct {
	Record json.RawMessage `json:"record"`
}

// Fetch reads the bin and returns the raw record payload.
func (c *Client) Fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bin: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var doc binDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode bin document: %w", err)
	}

	return doc.Record, nil
}

// Replace overwrites the bin with the full serialized collection.
func (c *Client) Replace(ctx context.Context, books []entities.Book) error {
	// The stored record is always an array, never null.
	if books == nil {
		books = []entities.Book{}
	}

	payload, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("replace bin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("replace bin: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.binID)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Master-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
