package driver

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseType(t *testing.T) {
	for _, valid := range []string{"chrome", "chromium", "edge"} {
		typ, err := ParseType(valid)
		require.NoError(t, err)
		assert.Equal(t, Type(valid), typ)
	}

	_, err := ParseType("firefox")
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidBrowser, code)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.False(t, opts.NoSandbox, "should be sandboxed by default")
	assert.False(t, opts.DevTools)
	assert.Zero(t, opts.SlowMotion)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, DefaultCookieFile, opts.CookieFile)
	assert.Equal(t, 1024, opts.ScreenshotMaxWidth)
	assert.Equal(t, 1280, opts.WindowWidth)
	assert.Equal(t, 800, opts.WindowHeight)
}

func TestFactoryFindBinary(t *testing.T) {
	f := NewFactory(zap.NewNop())
	f.lookPath = func(name string) (string, error) {
		if name == "chromium-browser" {
			return "/usr/bin/chromium-browser", nil
		}
		return "", errors.New("not found")
	}

	assert.Equal(t, "/usr/bin/chromium-browser", f.findBinary(TypeChromium, Options{}))
	assert.Empty(t, f.findBinary(TypeChrome, Options{}))
	assert.Equal(t, "/opt/chrome", f.findBinary(TypeChrome, Options{BinaryPath: "/opt/chrome"}))
}
