package driver

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Type selects the browser flavor the factory launches.
type Type string

const (
	TypeChrome   Type = "chrome"
	TypeChromium Type = "chromium"
	TypeEdge     Type = "edge"
)

var validTypes = []Type{TypeChrome, TypeChromium, TypeEdge}

// binaryNames lists candidate executables per browser type, checked in
// order on PATH when no explicit binary path is configured.
var binaryNames = map[Type][]string{
	TypeChrome:   {"google-chrome", "google-chrome-stable", "chrome"},
	TypeChromium: {"chromium", "chromium-browser"},
	TypeEdge:     {"microsoft-edge", "msedge"},
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	for _, v := range validTypes {
		if t == v {
			return t, nil
		}
	}
	return "", NewError(CodeInvalidBrowser, errors.Errorf("unknown browser type %q, valid options are: %v", s, validTypes))
}

// Options controls how a browser is launched and how the resulting
// driver behaves.
type Options struct {
	Headless   bool
	NoSandbox  bool
	DevTools   bool
	SlowMotion time.Duration
	Timeout    time.Duration

	WindowWidth  int
	WindowHeight int
	UserAgent    string

	// BinaryPath overrides PATH lookup for the browser executable. When
	// empty and nothing matching the Type is installed, rod falls back to
	// its managed download.
	BinaryPath string

	CookieFile         string
	ScreenshotMaxWidth int
}

const (
	defaultTimeout      = 10 * time.Second
	defaultShotMaxWidth = 1024
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	navigationIdleWait  = 5 * time.Second
	interactionIdleWait = 2 * time.Second
)

func DefaultOptions() Options {
	return Options{
		Headless:           true,
		NoSandbox:          false,
		DevTools:           false,
		SlowMotion:         0,
		Timeout:            defaultTimeout,
		WindowWidth:        defaultWindowWidth,
		WindowHeight:       defaultWindowHeight,
		CookieFile:         DefaultCookieFile,
		ScreenshotMaxWidth: defaultShotMaxWidth,
	}
}

// Factory launches browsers and hands out connected Drivers.
type Factory struct {
	log *zap.Logger

	// swappable in tests
	lookPath func(string) (string, error)
}

func NewFactory(log *zap.Logger) *Factory {
	return &Factory{
		log:      log.With(zap.String("component", "factory")),
		lookPath: exec.LookPath,
	}
}

func (f *Factory) findBinary(typ Type, opts Options) string {
	if opts.BinaryPath != "" {
		return opts.BinaryPath
	}
	for _, name := range binaryNames[typ] {
		if path, err := f.lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Launch starts a browser of the given type and returns a Driver bound
// to a fresh blank page.
func (f *Factory) Launch(ctx context.Context, typ Type, opts Options) (*Driver, error) {
	if _, err := ParseType(string(typ)); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.ScreenshotMaxWidth <= 0 {
		opts.ScreenshotMaxWidth = defaultShotMaxWidth
	}

	l := launcher.New().
		Headless(opts.Headless).
		Devtools(opts.DevTools).
		NoSandbox(opts.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-setuid-sandbox")

	if bin := f.findBinary(typ, opts); bin != "" {
		l = l.Bin(bin)
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", opts.WindowWidth, opts.WindowHeight))
	}
	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}

	f.log.Info("launching browser",
		zap.String("type", string(typ)),
		zap.Bool("headless", opts.Headless))

	url, err := l.Launch()
	if err != nil {
		return nil, LaunchError(errors.Wrap(err, "failed to launch browser"))
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(opts.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, LaunchError(errors.Wrap(err, "failed to connect to browser"))
	}

	d, err := newDriver(ctx, typ, browser, l, opts, f.log)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, err
	}
	return d, nil
}
