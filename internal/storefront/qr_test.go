package storefront

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuURL(t *testing.T) {
	u, err := QR{BaseURL: "https://orders.example.com/"}.MenuURL("acme")
	require.NoError(t, err)
	assert.Equal(t, "https://orders.example.com/acme/menu", u)

	_, err = QR{}.MenuURL("acme")
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestPNG(t *testing.T) {
	png, err := QR{BaseURL: "https://orders.example.com"}.PNG("acme")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))

	_, err = QR{}.PNG("acme")
	assert.ErrorIs(t, err, ErrNoBaseURL)
}
