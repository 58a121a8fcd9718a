// Package qr renderiza links de compartir como códigos QR embebibles.
package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

type Renderer struct {
	size int
}

func NewRenderer() *Renderer {
	return &Renderer{size: 256}
}

// RenderDataURL genera el PNG y lo devuelve como data URL, listo para un
// <img src=...> sin endpoint adicional.
func (r *Renderer) RenderDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, r.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
