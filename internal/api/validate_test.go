package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub-domain.example.co",
		"under_score@host.io",
	}
	for _, email := range valid {
		assert.True(t, ValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@nodot",
		"user name@example.com",
	}
	for _, email := range invalid {
		assert.False(t, ValidEmail(email), email)
	}
}

func TestValidPassword(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, ValidPassword("abc123!@"))
		assert.True(t, ValidPassword("Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!")) // 32 chars
	})

	t.Run("TooShort", func(t *testing.T) {
		assert.False(t, ValidPassword("a1!"))
	})

	t.Run("TooLong", func(t *testing.T) {
		assert.False(t, ValidPassword("Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!Aa1!x"))
	})

	t.Run("MissingClasses", func(t *testing.T) {
		assert.False(t, ValidPassword("lettersonly"))  // no digit, no special
		assert.False(t, ValidPassword("12345678!"))    // no letter
		assert.False(t, ValidPassword("abcd12345"))    // no special
	})

	t.Run("ForeignCharactersRejected", func(t *testing.T) {
		assert.False(t, ValidPassword("abc123!éx"))
	})
}
