package driver

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultCookieFile = "cookies.json"

// Cookie is the persisted cookie form. The file layout predates this
// implementation, so field names stay as they were written by older
// versions (notably "expiry" holding seconds since epoch).
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expiry   float64 `json:"expiry,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// CookieJar persists cookies between sessions in a JSON file.
type CookieJar struct {
	path string
	log  *zap.Logger
}

func NewCookieJar(path string, log *zap.Logger) *CookieJar {
	if path == "" {
		path = DefaultCookieFile
	}
	return &CookieJar{
		path: path,
		log:  log.With(zap.String("component", "cookies")),
	}
}

func (j *CookieJar) Path() string {
	return j.path
}

// Load reads saved cookies. A missing file yields an empty set. Fractional
// expiry values left behind by older writers are truncated to whole seconds.
func (j *CookieJar) Load() ([]Cookie, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			j.log.Debug("cookie file not found", zap.String("path", j.path))
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cookie file")
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrapf(err, "parse cookie file %s", j.path)
	}

	for i := range cookies {
		cookies[i].Expiry = math.Trunc(cookies[i].Expiry)
	}

	j.log.Debug("loaded saved cookies", zap.Int("count", len(cookies)))
	return cookies, nil
}

// Save overwrites the file with the given cookies.
func (j *CookieJar) Save(cookies []Cookie) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return errors.Wrap(err, "marshal cookies")
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write cookie file %s", j.path)
	}
	j.log.Debug("saved cookies", zap.Int("count", len(cookies)))
	return nil
}

// matchesHost reports whether the cookie's domain covers host. Cookies
// without a domain match any host, same as a fresh browser profile would
// accept them for the current document.
func (c Cookie) matchesHost(host string) bool {
	if c.Domain == "" || host == "" {
		return true
	}
	domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	host = strings.ToLower(host)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func (c Cookie) toParam() *proto.NetworkCookieParam {
	param := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if c.Expiry > 0 {
		param.Expires = proto.TimeSinceEpoch(math.Trunc(c.Expiry))
	}
	return param
}

func fromNetworkCookie(nc *proto.NetworkCookie) Cookie {
	c := Cookie{
		Name:     nc.Name,
		Value:    nc.Value,
		Domain:   nc.Domain,
		Path:     nc.Path,
		Secure:   nc.Secure,
		HTTPOnly: nc.HTTPOnly,
	}
	if !nc.Session {
		c.Expiry = math.Trunc(float64(nc.Expires))
	}
	return c
}
