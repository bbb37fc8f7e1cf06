package storage

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	t.Parallel()

	name := ObjectName("dinner photo.JPG")
	assert.True(t, strings.HasSuffix(name, ".jpg"), "extension should be lowercased: %s", name)
	assert.NotContains(t, name, " ")

	// Names for the same input should not collide.
	other := ObjectName("dinner photo.JPG")
	assert.NotEqual(t, name, other)
}

func TestObjectNameWithoutExtension(t *testing.T) {
	t.Parallel()
	assert.True(t, strings.HasSuffix(ObjectName("README"), ".bin"))
}

func TestAvatarObjectName(t *testing.T) {
	t.Parallel()

	name := AvatarObjectName(42, "me.png")
	assert.True(t, strings.HasPrefix(name, strconv.Itoa(42)+"-"), "avatar names start with the user ID: %s", name)
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestAllowedImageType(t *testing.T) {
	t.Parallel()

	assert.True(t, AllowedImageType("image/jpeg"))
	assert.True(t, AllowedImageType("image/webp"))
	assert.False(t, AllowedImageType("application/pdf"))
	assert.False(t, AllowedImageType("text/html"))
}

func TestMemoryUploader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := NewMemoryUploader()

	url, err := up.Upload(ctx, "food-images", "abc.jpg", []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "memory://food-images/abc.jpg", url)

	data, ok := up.Get("food-images", "abc.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg bytes"), data)

	require.NoError(t, up.Remove(ctx, "food-images", "abc.jpg"))
	_, ok = up.Get("food-images", "abc.jpg")
	assert.False(t, ok)
}
