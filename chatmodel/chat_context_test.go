package chatmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatContext_Basics(t *testing.T) {
	t.Parallel()
	c := NewChatContext("cid", 123)
	require.NotNil(t, c)
	assert.Equal(t, "cid", c.GetChatID())
	assert.Equal(t, 123, c.AppData())

	// Metadata
	val, ok := c.GetMetadata("not-found")
	assert.Nil(t, val)
	assert.False(t, ok)
	c.SetMetadata("foo", 1)
	v, ok := c.GetMetadata("foo")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestNewChatContext_DefaultID(t *testing.T) {
	t.Parallel()
	c := NewChatContext("", nil)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.GetChatID())
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()
	c := NewChatContext("y", nil)
	ctx := context.Background()
	ctx = WithChatContext(ctx, c)
	got := GetChatContext(ctx)
	assert.Equal(t, c, got)

	id, err := GetChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "y", id)

	// SetChatID keeps the context when the ID matches
	same := SetChatID(ctx, "y")
	assert.Equal(t, c, GetChatContext(same))

	// SetChatID replaces the chat on mismatch
	replaced := SetChatID(ctx, "bar")
	assert.Equal(t, "bar", GetChatContext(replaced).GetChatID())

	// SetChatID creates a chat on a bare context
	fresh := SetChatID(context.Background(), "baz")
	assert.Equal(t, "baz", GetChatContext(fresh).GetChatID())
}

func TestGetChatID_Error(t *testing.T) {
	t.Parallel()
	_, err := GetChatID(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChatContext)
	assert.Nil(t, GetChatContext(context.Background()))
}

func TestAppDataAs(t *testing.T) {
	t.Parallel()
	type acct struct{ Name string }

	ctx := WithChatContext(context.Background(), NewChatContext("", &acct{Name: "Ada"}))
	v, ok := AppDataAs[*acct](ctx)
	require.True(t, ok)
	assert.Equal(t, "Ada", v.Name)

	// wrong type
	_, ok = AppDataAs[string](ctx)
	assert.False(t, ok)

	// no chat context
	_, ok = AppDataAs[*acct](context.Background())
	assert.False(t, ok)
}

func TestNewChatID_Unique(t *testing.T) {
	id1 := NewChatID()
	id2 := NewChatID()
	assert.NotEqual(t, id1, id2)
}
