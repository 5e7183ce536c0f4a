package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail("ada@example.com"))
	assert.Error(t, validateEmail(""))
	assert.Error(t, validateEmail("ada@example"))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, validateName("Ada"))
	assert.Error(t, validateName(""))
	assert.Error(t, validateName("A"))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, validatePhone(""))
	assert.NoError(t, validatePhone("+2348011111111"))
	assert.Error(t, validatePhone("call me"))
}
