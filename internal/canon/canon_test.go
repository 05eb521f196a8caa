package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Canonicalization idempotence.
func TestTextIdempotent(t *testing.T) {
	cases := []string{
		"line one  \r\nline two\t\r\n\r\n",
		"already\nclean",
		"",
		"trailing spaces   \n   \n",
		"mixed\r\nline\rendings\n",
	}
	for _, c := range cases {
		once := Text(c)
		twice := Text(once)
		assert.Equal(t, once, twice, "canon(canon(%q)) must equal canon(%q)", c, c)
	}
}

func TestTextNormalizesLineEndingsAndTrailingWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb", Text("a  \r\nb  \r\n"))
	assert.Equal(t, "", Text("   \n  \t\n"))
}

func TestStableJSONDeterministicKeyOrder(t *testing.T) {
	type payload struct {
		Zeta  string `json:"zeta"`
		Alpha string `json:"alpha"`
	}
	a, err := StableJSON(payload{Zeta: "z", Alpha: "a"})
	assert.NoError(t, err)
	b, err := StableJSON(payload{Zeta: "z", Alpha: "a"})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, `{"alpha":"a","zeta":"z"}`, a)
}
