package slcanx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFDLength(t *testing.T) {
	assert.Equal(t, 0, encodeFDLength(0))
	assert.Equal(t, 8, encodeFDLength(8))
	assert.Equal(t, 9, encodeFDLength(9))
	assert.Equal(t, 9, encodeFDLength(12))
	assert.Equal(t, 15, encodeFDLength(64))
	assert.Equal(t, -1, encodeFDLength(65))
}

func TestDecodeFDLength(t *testing.T) {
	assert.Equal(t, 8, decodeFDLength(8))
	assert.Equal(t, 12, decodeFDLength(9))
	assert.Equal(t, 64, decodeFDLength(15))
	assert.Equal(t, -1, decodeFDLength(16))
	assert.Equal(t, -1, decodeFDLength(-1))
}
