// Package docintel habla con el servicio hosteado de comprensión de
// documentos (API estilo messages, contenido multimodal en base64) y
// convierte sus respuestas en resultados de extracción tipados.
package docintel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petrecord/internal/platform/httpclient"
	"petrecord/internal/ports/extraction"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
	model        string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "x-api-key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		// Documentos grandes tardan; el default corto del httpclient no alcanza.
		timeout = 120 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		model:        strings.TrimSpace(cfg.Model),
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != "" && c.model != ""
}

type contentBlock struct {
	Type   string       `json:"type"` // text | image | document
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"` // base64
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// complete manda un turno de usuario y devuelve el texto concatenado de la
// respuesta. No hay reintentos: los uploads los inicia el usuario y se
// pueden repetir.
func (c *Client) complete(ctx context.Context, blocks []contentBlock) (string, error) {
	if !c.IsConfigured() {
		return "", extraction.ErrNotConfigured
	}

	req := messagesRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages:  []message{{Role: "user", Content: blocks}},
	}

	var resp messagesResponse
	err := c.http.DoJSON(ctx, "POST", "/v1/messages", map[string]string{
		c.apiKeyHeader: c.apiKey,
	}, req, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return "", fmt.Errorf("%w: status=%d", extraction.ErrService, httpErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", extraction.ErrService, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", extraction.ErrEmptyResponse
	}
	return text, nil
}
