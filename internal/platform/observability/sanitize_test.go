package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"ada@example.com":     "a***@example.com",
		" Öz@firma.com.tr ":   "Ö***@firma.com.tr",
		"no-at-sign":          "***",
		"@example.com":        "***",
		"ada@":                "***",
		"a\n@evil.test\nnext": "a***@evil.testnext",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), "MaskEmail(%q)", in)
	}
}

func TestSanitizeRoute(t *testing.T) {
	assert.Equal(t, "/", SanitizeRoute(""))
	assert.Equal(t, "/{locale}/{section}", SanitizeRoute("/{locale}/{section}\r\n"))
}
