package driver

import (
	"net/url"

	"github.com/pkg/errors"
)

const blankPage = "about:blank"

// ResolveURL resolves target against the current page URL, so relative
// paths work the way links on the page would.
func ResolveURL(base, target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(err, "invalid url %q", target)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	if base == "" || base == blankPage {
		return "", errors.Errorf("relative url %q requires a page to resolve against", target)
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return "", errors.Errorf("cannot resolve %q against %q", target, base)
	}
	return b.ResolveReference(ref).String(), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
