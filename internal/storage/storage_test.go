package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGifKey(t *testing.T) {
	assert.Equal(t, "gifs/1.gif", GifKey("gifs/", 1))
	assert.Equal(t, "42.gif", GifKey("", 42))
}
