package driver

import (
	"bytes"
	"context"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SanitizeConfig controls what SanitizeHTML strips from a page source.
type SanitizeConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxSize       int // 0 keeps the full output
}

var DefaultSanitizeConfig = SanitizeConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "iframe", "svg",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority",
	},
}

// SaveSource writes the current page HTML to path. With sanitize set,
// scripts, styles and presentation attributes are stripped first.
func (d *Driver) SaveSource(ctx context.Context, path string, sanitize bool) error {
	d.log.Info("write page source", zap.String("path", path), zap.Bool("sanitized", sanitize))

	src, err := d.Source(ctx)
	if err != nil {
		return err
	}
	if sanitize {
		src = SanitizeHTML(src, nil)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return errors.Wrapf(err, "write page source %s", path)
	}
	return nil
}

// SanitizeHTML strips noise tags and attributes from raw HTML. Parse
// failures fall back to the raw input.
func SanitizeHTML(raw string, cfg *SanitizeConfig) string {
	if cfg == nil {
		cfg = &DefaultSanitizeConfig
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	stripNode(doc, cfg)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return raw
	}

	out := buf.String()
	if cfg.MaxSize > 0 && len(out) > cfg.MaxSize {
		out = out[:cfg.MaxSize]
	}
	return out
}

func stripNode(n *html.Node, cfg *SanitizeConfig) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && slices.Contains(cfg.TagsToRemove, c.Data) {
			n.RemoveChild(c)
			continue
		}
		stripNode(c, cfg)
	}

	if n.Type == html.ElementNode {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !slices.Contains(cfg.AttrsToRemove, a.Key) {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}
}
