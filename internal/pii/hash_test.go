package pii

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sha256("foo@bar.com")
const fooBarDigest = "0c7e6a405862e402eb76a70f8a26fc732d07c32931e9fae9ab1582911d2e8a3b"

func TestHashEmail_NormalizesCaseAndWhitespace(t *testing.T) {
	want := HashEmail("foo@bar.com")
	assert.Equal(t, fooBarDigest, want)
	assert.Equal(t, want, HashEmail("Foo@Bar.com "))
	assert.Equal(t, want, HashEmail(" foo@bar.com"))
	assert.Len(t, want, 64)
}

func TestHashPhone_IgnoresFormatting(t *testing.T) {
	assert.Equal(t, HashPhone("12345678900"), HashPhone("+1 (234) 567-8900"))
	assert.Equal(t, HashValue("12345678900"), HashPhone("+1 (234) 567-8900"))
}

func TestHash_AbsentInputsStayAbsent(t *testing.T) {
	assert.Empty(t, HashEmail(""))
	assert.Empty(t, HashEmail("   "))
	assert.Empty(t, HashPhone(""))
	assert.Empty(t, HashPhone("no digits"))
	assert.Empty(t, HashValue(""))
}

func TestHashValue_DoesNotNormalize(t *testing.T) {
	assert.NotEqual(t, HashValue("Foo@Bar.com"), HashValue("foo@bar.com"))
	assert.Equal(t, fooBarDigest, HashValue("foo@bar.com"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "2348012345678", DigitsOnly("+234 801 234 5678"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
