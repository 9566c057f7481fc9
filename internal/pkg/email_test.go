package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmailValid(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"bob.smith+games@mail.example.org",
	}
	for _, email := range valid {
		assert.True(t, IsEmailValid(email), email)
	}

	invalid := []string{
		"",
		"alice",
		"alice@",
		"@example.com",
		"alice@localhost",
		" alice@example.com",
		"Alice <alice@example.com>",
		"alice@@example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsEmailValid(email), email)
	}
}

func TestGenerateGameID(t *testing.T) {
	first := GenerateGameID()
	second := GenerateGameID()

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
