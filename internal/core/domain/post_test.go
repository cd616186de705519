package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComment(t *testing.T) {
	c, err := NewComment("u1", "nice post")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "nice post", c.Text)
	assert.Empty(t, c.ID)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := NewComment("u1", text)
		assert.ErrorIs(t, err, ErrInvalidComment, "text %q", text)
	}
}

func TestPost_IsLikedBy(t *testing.T) {
	p := &Post{Likes: []string{"u1", "u2"}}

	assert.True(t, p.IsLikedBy("u2"))
	assert.False(t, p.IsLikedBy("u3"))
	assert.False(t, (&Post{}).IsLikedBy("u1"))
}
