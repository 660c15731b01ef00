package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAspectRatio_KnownSizes(t *testing.T) {
	cases := []struct {
		width, height int
		want          string
	}{
		{1024, 1024, "1:1"},
		{1024, 768, "4:3"},
		{768, 1024, "3:4"},
		{1280, 720, "16:9"},
		{720, 1280, "9:16"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AspectRatio(c.width, c.height))
	}
}

func TestAspectRatio_ReducesByGCDForUnknownSizes(t *testing.T) {
	assert.Equal(t, "3:2", AspectRatio(1500, 1000))
	assert.Equal(t, "2:1", AspectRatio(2048, 1024))
}

func TestAspectRatio_DefaultsToSquareForInvalidDimensions(t *testing.T) {
	assert.Equal(t, "1:1", AspectRatio(0, 0))
	assert.Equal(t, "1:1", AspectRatio(-1, 500))
}
