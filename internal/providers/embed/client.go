package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/qdoctor/agent/internal/core"
)

// Client calls an external embedding endpoint. Two dialects are supported:
// Ollama's /api/embed and the OpenAI /v1/embeddings shape.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dialect    dialect
}

type dialect int

const (
	dialectOllama dialect = iota
	dialectOpenAI
)

func newClient(baseURL, apiKey, model string, d dialect, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		dialect:    d,
	}
}

func NewOllama(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return newClient(baseURL, apiKey, model, dialectOllama, timeout)
}

func NewOpenAICompatible(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return newClient(baseURL, apiKey, model, dialectOpenAI, timeout)
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var path string
	var payload any
	switch c.dialect {
	case dialectOllama:
		path = "/api/embed"
		payload = map[string]any{"model": c.model, "input": text}
	default:
		path = "/v1/embeddings"
		payload = map[string]any{"model": c.model, "input": []string{text}}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AgentUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %v", core.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d: %s", core.ErrUpstream, resp.StatusCode, string(body))
	}

	return c.parseVector(body)
}

func (c *Client) parseVector(body []byte) ([]float32, error) {
	switch c.dialect {
	case dialectOllama:
		var result struct {
			Embeddings [][]float32 `json:"embeddings"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", core.ErrUpstream, err)
		}
		if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
			return nil, fmt.Errorf("%w: empty embedding", core.ErrUpstream)
		}
		return result.Embeddings[0], nil
	default:
		var result struct {
			Data []struct {
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: decode: %v", core.ErrUpstream, err)
		}
		if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding", core.ErrUpstream)
		}
		return result.Data[0].Embedding, nil
	}
}
