package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"field\": \"IT\"}\n```"
	assert.Equal(t, `{"field": "IT"}`, StripCodeFences(in))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`  {"a":1} `))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "Mün", Truncate("München", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "English", Capitalize("eNGLISH"))
	assert.Equal(t, "", Capitalize(""))
}

func TestCodeOfAndHTTPStatus(t *testing.T) {
	err := E(CodeUnavailable, "Op", "down", nil)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, 503, HTTPStatus(err))
	assert.Equal(t, CodeNotFound, CodeOf(ErrNotFound))
	assert.Equal(t, 404, HTTPStatus(ErrNotFound))
	assert.True(t, IsCode(E(CodeInvalidArgument, "Op", "bad", nil), CodeInvalidArgument))
}
