package utils_test

import (
	"testing"

	"bookreviews/utils"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co",
		"a_b-c@mail.example.org",
	}
	for _, e := range valid {
		assert.True(t, utils.ValidEmail(e), e)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@@example.com",
		"user@example",
	}
	for _, e := range invalid {
		assert.False(t, utils.ValidEmail(e), e)
	}
}
