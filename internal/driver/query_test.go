package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	attrs map[string]string
	tag   string
}

func (p fakeProbe) attr(name string) (string, bool) {
	v, ok := p.attrs[name]
	return v, ok
}

func (p fakeProbe) tagName() string {
	return p.tag
}

func TestQueryValidate(t *testing.T) {
	err := Query{}.Validate()
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidQuery, code)

	assert.NoError(t, Query{ID: "login"}.Validate())
	assert.NoError(t, Query{Class: "btn", Tag: "button"}.Validate())
}

func TestQueryValidateSingle(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"none", Query{}, true},
		{"one", Query{Name: "q"}, false},
		{"two", Query{ID: "x", Tag: "div"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.ValidateSingle()
			if tt.wantErr {
				require.Error(t, err)
				code, ok := CodeOf(err)
				require.True(t, ok)
				assert.Equal(t, CodeInvalidQuery, code)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuerySelector(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"id", Query{ID: "login"}, "#login"},
		{"name", Query{Name: "q"}, `[name="q"]`},
		{"class", Query{Class: "btn"}, ".btn"},
		{"tag", Query{Tag: "input"}, "input"},
		{"combined", Query{Tag: "input", ID: "login", Class: "wide", Name: "user"}, `input#login.wide[name="user"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Selector())
		})
	}
}

func TestQuerySelectors(t *testing.T) {
	sels := Query{ID: "a", Name: "b", Class: "c", Tag: "div"}.selectors()
	assert.Equal(t, []string{"#a", `[name="b"]`, ".c", "div"}, sels)
}

func TestQueryString(t *testing.T) {
	q := Query{ID: "login", Tag: "input"}
	assert.Equal(t, `id="login", tag="input"`, q.String())

	assert.Empty(t, Query{}.String())
}

func TestAttrFilter(t *testing.T) {
	f := attrFilter("name", "user")

	assert.True(t, f(fakeProbe{attrs: map[string]string{"name": "user"}}))
	assert.False(t, f(fakeProbe{attrs: map[string]string{"name": "other"}}))
	assert.False(t, f(fakeProbe{attrs: map[string]string{}}))
}

func TestClassFilter(t *testing.T) {
	f := classFilter("btn")

	assert.True(t, f(fakeProbe{attrs: map[string]string{"class": "btn"}}))
	assert.True(t, f(fakeProbe{attrs: map[string]string{"class": "wide btn primary"}}))
	assert.False(t, f(fakeProbe{attrs: map[string]string{"class": "btn-primary"}}))
	assert.False(t, f(fakeProbe{attrs: map[string]string{}}))
}

func TestTagFilter(t *testing.T) {
	f := tagFilter("input")

	assert.True(t, f(fakeProbe{tag: "input"}))
	assert.True(t, f(fakeProbe{tag: "INPUT"}))
	assert.False(t, f(fakeProbe{tag: "button"}))
}

func TestMatchesAll(t *testing.T) {
	q := Query{Tag: "input", Class: "wide"}
	fs := q.filters()

	match := fakeProbe{tag: "input", attrs: map[string]string{"class": "wide"}}
	miss := fakeProbe{tag: "input", attrs: map[string]string{"class": "narrow"}}

	assert.True(t, matchesAll(match, fs))
	assert.False(t, matchesAll(miss, fs))
}
