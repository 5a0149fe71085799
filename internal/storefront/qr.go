// Package storefront renders the printable QR code that sends customers to a
// restaurant's menu.
package storefront

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

var ErrNoBaseURL = errors.New("public base url is not configured")

type QR struct {
	BaseURL string
	Size    int
}

func (q QR) MenuURL(slug string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(q.BaseURL), "/")
	if base == "" {
		return "", ErrNoBaseURL
	}
	return base + "/" + slug + "/menu", nil
}

// PNG encodes the menu URL for slug.
func (q QR) PNG(slug string) ([]byte, error) {
	url, err := q.MenuURL(slug)
	if err != nil {
		return nil, err
	}
	size := q.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(url, qrcode.Medium, size)
}
