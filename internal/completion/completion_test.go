package completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatconnect/internal/domain"
)

type countingCompleter struct{ calls int }

func (c *countingCompleter) Name() string { return "counting" }

func (c *countingCompleter) Complete(ctx context.Context, systemPrompt string, messages []domain.Message) (domain.Completion, error) {
	c.calls++
	return domain.Completion{Message: domain.Message{Role: domain.RoleAssistant, Content: "ok"}}, nil
}

func TestBuildMessages(t *testing.T) {
	conv := []domain.Message{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}}

	out := BuildMessages("sys", conv)

	require.Len(t, out, 3)
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: "sys"}, out[0])
	assert.Equal(t, conv, out[1:])
}

func TestNewLimited_Disabled(t *testing.T) {
	inner := &countingCompleter{}
	assert.Same(t, inner, NewLimited(inner, 0, 0))
}

func TestLimited_Delegates(t *testing.T) {
	inner := &countingCompleter{}
	l := NewLimited(inner, 100, 2)

	_, err := l.Complete(context.Background(), "", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", l.Name())
}

func TestLimited_ContextExpires(t *testing.T) {
	inner := &countingCompleter{}
	l := NewLimited(inner, 0.001, 1)

	_, err := l.Complete(context.Background(), "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Complete(ctx, "", nil)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, inner.calls)
}
