// Package profiles loads named browser profiles from a YAML catalog.
package profiles

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"webpuppet/internal/driver"
)

const DefaultProfile = "default"

// Duration parses YAML values like "250ms" or "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	tmp, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = tmp
	return nil
}

// Profile overrides launch options for a named setup. Unset fields keep
// the caller's values.
type Profile struct {
	Browser      string    `yaml:"browser"`
	Headless     *bool     `yaml:"headless"`
	UserAgent    string    `yaml:"userAgent"`
	WindowWidth  int       `yaml:"windowWidth"`
	WindowHeight int       `yaml:"windowHeight"`
	SlowMotion   *Duration `yaml:"slowMotion"`
	Timeout      *Duration `yaml:"timeout"`
}

// Apply merges the profile into opts and resolves the browser type.
func (p Profile) Apply(typ driver.Type, opts driver.Options) (driver.Type, driver.Options, error) {
	if p.Browser != "" {
		t, err := driver.ParseType(p.Browser)
		if err != nil {
			return "", driver.Options{}, err
		}
		typ = t
	}
	if p.Headless != nil {
		opts.Headless = *p.Headless
	}
	if p.UserAgent != "" {
		opts.UserAgent = p.UserAgent
	}
	if p.WindowWidth > 0 {
		opts.WindowWidth = p.WindowWidth
	}
	if p.WindowHeight > 0 {
		opts.WindowHeight = p.WindowHeight
	}
	if p.SlowMotion != nil {
		opts.SlowMotion = p.SlowMotion.Duration
	}
	if p.Timeout != nil {
		opts.Timeout = p.Timeout.Duration
	}
	return typ, opts, nil
}

// Catalog maps profile names to profiles.
type Catalog struct {
	profiles map[string]Profile
}

func Load(data []byte) (*Catalog, error) {
	profs := make(map[string]Profile)
	if err := yaml.Unmarshal(data, &profs); err != nil {
		return nil, errors.Wrap(err, "parse profiles")
	}
	return &Catalog{profiles: profs}, nil
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profiles file %s", path)
	}
	return Load(data)
}

// Lookup finds a profile by name. An empty name falls back to the
// default profile; a missing default is an empty profile, not an error.
func (c *Catalog) Lookup(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := c.profiles[name]
	if !ok {
		if name == DefaultProfile {
			return Profile{}, nil
		}
		return Profile{}, driver.NewError(driver.CodeInvalidProfile, errors.Errorf("unknown profile %q", name))
	}
	return p, nil
}

// Names lists the catalog's profile names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	return names
}
