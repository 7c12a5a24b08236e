package gameprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPropertyAppendsWithoutMutatingOriginal(t *testing.T) {
	original := GameProfile{
		Name:       "Notch",
		Properties: []Property{{Name: "textures", Value: "abc"}},
	}

	extended := original.WithProperty(Property{Name: "extra", Value: "xyz"})

	assert.Len(t, original.Properties, 1, "original profile's property slice must not grow")
	assert.Len(t, extended.Properties, 2)
	assert.Equal(t, "textures", extended.Properties[0].Name)
	assert.Equal(t, "extra", extended.Properties[1].Name)
}

func TestWithPropertyOnEmptyProfile(t *testing.T) {
	original := GameProfile{Name: "Notch"}
	extended := original.WithProperty(Property{Name: "textures", Value: "abc"})

	assert.Empty(t, original.Properties)
	assert.Len(t, extended.Properties, 1)
}
