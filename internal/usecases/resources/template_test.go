package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("acceptance-criteria://{ticketId}")
	require.NoError(t, err)

	assert.Equal(t, "acceptance-criteria://{ticketId}", tmpl.String())
	assert.Equal(t, []string{"ticketId"}, tmpl.Names())
	assert.False(t, tmpl.Listable())

	for _, raw := range []string{"greeting://{name", "greeting://{+name}", "greeting://{name*}", "repo://{a}/{a}"} {
		_, err = ParseTemplate(raw)
		assert.Error(t, err, raw)
	}
}

func TestTemplateNamesIsACopy(t *testing.T) {
	tmpl, err := ParseTemplate("greeting://{name}")
	require.NoError(t, err)

	names := tmpl.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"name"}, tmpl.Names())
}

func TestTemplateMatch(t *testing.T) {
	tests := []struct {
		name     string
		template string
		uri      string
		want     map[string]string
		ok       bool
	}{
		{
			name:     "single variable",
			template: "greeting://{name}",
			uri:      "greeting://Ada",
			want:     map[string]string{"name": "Ada"},
			ok:       true,
		},
		{
			name:     "ticket id",
			template: "acceptance-criteria://{ticketId}",
			uri:      "acceptance-criteria://TICKET-1",
			want:     map[string]string{"ticketId": "TICKET-1"},
			ok:       true,
		},
		{
			name:     "two variables",
			template: "repo://{owner}/{name}",
			uri:      "repo://freepeak/server",
			want:     map[string]string{"owner": "freepeak", "name": "server"},
			ok:       true,
		},
		{
			name:     "plus sign",
			template: "greeting://{name}",
			uri:      "greeting://a+b",
			want:     map[string]string{"name": "a+b"},
			ok:       true,
		},
		{
			name:     "apostrophe",
			template: "greeting://{name}",
			uri:      "greeting://O'Brien",
			want:     map[string]string{"name": "O'Brien"},
			ok:       true,
		},
		{
			name:     "colon and at sign",
			template: "greeting://{name}",
			uri:      "greeting://a:b@c",
			want:     map[string]string{"name": "a:b@c"},
			ok:       true,
		},
		{
			name:     "non-ASCII",
			template: "greeting://{name}",
			uri:      "greeting://José",
			want:     map[string]string{"name": "José"},
			ok:       true,
		},
		{
			name:     "space",
			template: "greeting://{name}",
			uri:      "greeting://Ada Lovelace",
			want:     map[string]string{"name": "Ada Lovelace"},
			ok:       true,
		},
		{
			name:     "percent-encoded kept raw",
			template: "greeting://{name}",
			uri:      "greeting://%41da",
			want:     map[string]string{"name": "%41da"},
			ok:       true,
		},
		{
			name:     "literal between variables",
			template: "file://{dir}-{name}",
			uri:      "file://x-y",
			want:     map[string]string{"dir": "x", "name": "y"},
			ok:       true,
		},
		{
			name:     "literal suffix",
			template: "report://{id}.json",
			uri:      "report://42.json",
			want:     map[string]string{"id": "42"},
			ok:       true,
		},
		{
			name:     "comma ends a placeholder",
			template: "greeting://{name}",
			uri:      "greeting://a,b",
		},
		{
			name:     "literal text is not a pattern",
			template: "report://{id}.json",
			uri:      "report://42xjson",
		},
		{
			name:     "different scheme",
			template: "greeting://{name}",
			uri:      "farewell://Ada",
		},
		{
			name:     "empty placeholder",
			template: "greeting://{name}",
			uri:      "greeting://",
		},
		{
			name:     "extra path segment",
			template: "greeting://{name}",
			uri:      "greeting://Ada/extra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.template)
			require.NoError(t, err)

			resolved, ok := tmpl.Match(tt.uri)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.uri, resolved.URI)
			assert.Equal(t, tt.want, resolved.Values)
			assert.Equal(t, tmpl.Names(), resolved.Names)
		})
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	cases := map[string][]string{
		"greeting://{name}": {
			"greeting://Ada", "greeting://Grace-Hopper", "greeting://x",
			"greeting://a+b", "greeting://O'Brien", "greeting://a:b", "greeting://a@b",
			"greeting://José", "greeting://Ada Lovelace", "greeting://%41da",
		},
		"acceptance-criteria://{ticketId}": {"acceptance-criteria://TICKET-1", "acceptance-criteria://ABC_42"},
		"repo://{owner}/{name}":            {"repo://a/b", "repo://freepeak/server"},
	}

	for raw, uris := range cases {
		tmpl, err := ParseTemplate(raw)
		require.NoError(t, err)

		for _, uri := range uris {
			resolved, ok := tmpl.Match(uri)
			require.True(t, ok, uri)

			for _, name := range tmpl.Names() {
				assert.NotEmpty(t, resolved.Get(name))
			}

			expanded, err := tmpl.Expand(resolved.Values)
			require.NoError(t, err)
			assert.Equal(t, uri, expanded)
		}
	}
}

func TestTemplateExpandMissingValue(t *testing.T) {
	tmpl, err := ParseTemplate("repo://{owner}/{name}")
	require.NoError(t, err)

	_, err = tmpl.Expand(map[string]string{"owner": "a"})
	assert.Error(t, err)
}
