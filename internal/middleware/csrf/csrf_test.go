package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := Middleware(Config{})(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	return rec, h(c)
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec, err := run(t, httptest.NewRequest(http.MethodGet, "http://example.com/admin/menu", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN=")
}

func TestUnsafeMethodRequiresMatchingToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/admin/menu", nil)
		req.Header.Set("Origin", "http://example.com")
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		return req
	}

	_, err := run(t, newReq("tok"))
	assert.NoError(t, err)

	for _, h := range []string{"", "other"} {
		_, err := run(t, newReq(h))
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	}
}

func TestUnsafeMethodRejectsForeignOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/admin/menu", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "tok")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})

	_, err := run(t, req)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Equal(t, "invalid origin", he.Message)
}
