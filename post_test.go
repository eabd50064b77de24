package xclipper_test

import (
	"testing"

	xclipper "github.com/ochanuco/x-clipper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts post with handle and text", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{
			Handle: "@janedoe",
			Text:   "hello",
			URL:    "https://x.com/janedoe/status/123",
		}

		require.NoError(t, p.Validate())
	})

	t.Run("accepts identity-only post", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{
			Author: "Jane Doe",
			URL:    "https://x.com/janedoe/status/123",
		}

		require.NoError(t, p.Validate())
	})

	t.Run("accepts text-only post", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{
			Text: "just words",
			URL:  "https://x.com/janedoe/status/123",
		}

		require.NoError(t, p.Validate())
	})

	t.Run("rejects post with no identity and no text", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{
			URL:       "https://x.com/janedoe/status/123",
			MediaURLs: []string{"https://pbs.twimg.com/media/abc.jpg"},
		}

		err := p.Validate()
		require.Error(t, err)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
	})

	t.Run("rejects missing URL", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{Handle: "@janedoe", Text: "hello"}

		err := p.Validate()
		require.Error(t, err)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{Handle: "@janedoe", URL: "/janedoe/status/123"}

		err := p.Validate()
		require.Error(t, err)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
	})

	t.Run("rejects more than four media URLs", func(t *testing.T) {
		t.Parallel()

		p := &xclipper.Post{
			Handle: "@janedoe",
			URL:    "https://x.com/janedoe/status/123",
			MediaURLs: []string{
				"https://pbs.twimg.com/media/1.jpg",
				"https://pbs.twimg.com/media/2.jpg",
				"https://pbs.twimg.com/media/3.jpg",
				"https://pbs.twimg.com/media/4.jpg",
				"https://pbs.twimg.com/media/5.jpg",
			},
		}

		err := p.Validate()
		require.Error(t, err)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
	})
}
