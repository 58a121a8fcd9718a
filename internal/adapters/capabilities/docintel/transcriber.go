package docintel

import (
	"context"
	"encoding/base64"

	"petrecord/internal/ports/extraction"
)

var _ extraction.Transcriber = (*Client)(nil)

// Transcribe manda el audio como bloque base64 y devuelve el texto plano.
// La misma API multimodal resuelve speech-to-text; no hay un servicio
// aparte que configurar.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	blocks := []contentBlock{
		{
			Type: "audio",
			Source: &blockSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(audio),
			},
		},
		{
			Type: "text",
			Text: "Transcribe this veterinary visit recording verbatim. Respond with the transcript text only, no preamble.",
		},
	}
	return c.complete(ctx, blocks)
}
