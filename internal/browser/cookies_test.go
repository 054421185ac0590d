package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies-linkedin.json")
	content := `[
  {"name": "li_at", "value": "abc", "domain": ".linkedin.com", "path": "/", "expires": 1999999999, "httpOnly": true, "secure": true, "sameSite": "no_restriction"},
  {"name": "lang", "value": "v=2&lang=en-us", "domain": ".linkedin.com", "sameSite": "lax"},
  {"name": "", "value": "dropped", "domain": ".linkedin.com"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	liAt := cookies[0]
	assert.Equal(t, "li_at", liAt.Name)
	assert.Equal(t, ".linkedin.com", *liAt.Domain)
	assert.Equal(t, 1999999999.0, *liAt.Expires)
	assert.True(t, *liAt.HttpOnly)
	assert.True(t, *liAt.Secure)
	assert.Equal(t, playwright.SameSiteAttributeNone, liAt.SameSite)

	lang := cookies[1]
	assert.Equal(t, "/", *lang.Path)
	assert.Nil(t, lang.Expires)
	assert.Nil(t, lang.HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, lang.SameSite)
}

func TestLoadCookies_Errors(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))
	_, err = LoadCookies(bad)
	assert.Error(t, err)
}

func TestSaveCookies_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	saved := []playwright.Cookie{{
		Name:     "li_at",
		Value:    "abc",
		Domain:   ".linkedin.com",
		Path:     "/",
		Expires:  1999999999,
		HttpOnly: true,
		Secure:   true,
		SameSite: playwright.SameSiteAttributeStrict,
	}}
	require.NoError(t, SaveCookies(path, saved))

	loaded, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "abc", loaded[0].Value)
	assert.Equal(t, playwright.SameSiteAttributeStrict, loaded[0].SameSite)
}

func TestRandomDelay_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	RandomDelay(ctx, 5000, 6000)
	assert.Less(t, time.Since(start), time.Second)
}
