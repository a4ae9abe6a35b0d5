package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPathFromURL(t *testing.T) {
	url := PublicURL("my-bucket", "avatars/user-1/pic.png")
	assert.Equal(t, "https://storage.googleapis.com/my-bucket/avatars/user-1/pic.png", url)
	assert.Equal(t, "avatars/user-1/pic.png", ObjectPathFromURL("my-bucket", url))

	// Foreign URLs resolve to nothing.
	assert.Equal(t, "", ObjectPathFromURL("my-bucket", "https://example.com/pic.png"))
	assert.Equal(t, "", ObjectPathFromURL("other-bucket", url))
	assert.Equal(t, "", ObjectPathFromURL("my-bucket", ""))
}
