package driver

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Query describes DOM search criteria. Any combination may be set for
// Elements; exactly one must be set for single-element operations.
type Query struct {
	ID    string
	Name  string
	Class string
	Tag   string
}

func (q Query) criteria() []string {
	var set []string
	if q.ID != "" {
		set = append(set, "id")
	}
	if q.Name != "" {
		set = append(set, "name")
	}
	if q.Class != "" {
		set = append(set, "class")
	}
	if q.Tag != "" {
		set = append(set, "tag")
	}
	return set
}

// Validate checks that at least one criterion is set.
func (q Query) Validate() error {
	if len(q.criteria()) == 0 {
		return InvalidQueryError(errors.New("at least one of id, name, class or tag must be set"))
	}
	return nil
}

// ValidateSingle checks that exactly one criterion is set.
func (q Query) ValidateSingle() error {
	set := q.criteria()
	if len(set) != 1 {
		return InvalidQueryError(
			errors.Errorf("exactly one of id, name, class or tag must be set, got %d", len(set)))
	}
	return nil
}

// Selector renders the query as a compound CSS selector.
func (q Query) Selector() string {
	var sb strings.Builder
	if q.Tag != "" {
		sb.WriteString(q.Tag)
	}
	if q.ID != "" {
		fmt.Fprintf(&sb, "#%s", q.ID)
	}
	if q.Class != "" {
		fmt.Fprintf(&sb, ".%s", q.Class)
	}
	if q.Name != "" {
		fmt.Fprintf(&sb, "[name=%q]", q.Name)
	}
	return sb.String()
}

// selectors returns one CSS selector per criterion, used to collect
// candidate matches before filtering.
func (q Query) selectors() []string {
	var sels []string
	if q.ID != "" {
		sels = append(sels, "#"+q.ID)
	}
	if q.Name != "" {
		sels = append(sels, fmt.Sprintf("[name=%q]", q.Name))
	}
	if q.Class != "" {
		sels = append(sels, "."+q.Class)
	}
	if q.Tag != "" {
		sels = append(sels, q.Tag)
	}
	return sels
}

func (q Query) String() string {
	params := []struct {
		key   string
		value string
	}{
		{"id", q.ID},
		{"name", q.Name},
		{"class", q.Class},
		{"tag", q.Tag},
	}

	var parts []string
	for _, p := range params {
		if p.value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", p.key, p.value))
		}
	}
	return strings.Join(parts, ", ")
}

// elementProbe is the minimal element view the filter predicates need.
// Satisfied by rodProbe in production and by fakes in tests.
type elementProbe interface {
	attr(name string) (string, bool)
	tagName() string
}

type elementFilter func(elementProbe) bool

func attrFilter(name, value string) elementFilter {
	return func(el elementProbe) bool {
		v, ok := el.attr(name)
		return ok && v == value
	}
}

func classFilter(class string) elementFilter {
	return func(el elementProbe) bool {
		v, ok := el.attr("class")
		if !ok {
			return false
		}
		for _, c := range strings.Fields(v) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func tagFilter(tag string) elementFilter {
	return func(el elementProbe) bool {
		return strings.EqualFold(el.tagName(), tag)
	}
}

// filters returns the predicates every candidate must pass.
func (q Query) filters() []elementFilter {
	var fs []elementFilter
	if q.ID != "" {
		fs = append(fs, attrFilter("id", q.ID))
	}
	if q.Name != "" {
		fs = append(fs, attrFilter("name", q.Name))
	}
	if q.Class != "" {
		fs = append(fs, classFilter(q.Class))
	}
	if q.Tag != "" {
		fs = append(fs, tagFilter(q.Tag))
	}
	return fs
}

func matchesAll(el elementProbe, fs []elementFilter) bool {
	for _, f := range fs {
		if !f(el) {
			return false
		}
	}
	return true
}
