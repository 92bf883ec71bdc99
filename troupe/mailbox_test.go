// File: troupe/mailbox_test.go
package troupe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Text string
}

func (note) MessageType() string { return "note" }

func push(t *testing.T, mb *Mailbox[note], text string) {
	t.Helper()
	err := mb.Push(context.Background(), NewEnvelope(note{Text: text}))
	require.NoError(t, err)
}

func TestMailbox_FIFO(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 8})

	push(t, mb, "a")
	push(t, mb, "b")
	push(t, mb, "c")

	for _, want := range []string{"a", "b", "c"} {
		env, err := mb.Pop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, env.Message.Text, "delivery must preserve arrival order")
	}
}

func TestMailbox_BlockPolicyWaitsForSpace(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1, Policy: Block})
	push(t, mb, "first")

	unblocked := make(chan error, 1)
	go func() {
		unblocked <- mb.Push(context.Background(), NewEnvelope(note{Text: "second"}))
	}()

	select {
	case <-unblocked:
		t.Fatal("push should block while the mailbox is full")
	case <-time.After(50 * time.Millisecond):
	}

	_, err := mb.Pop(context.Background())
	require.NoError(t, err)

	select {
	case err := <-unblocked:
		assert.NoError(t, err, "push should complete once space frees")
	case <-time.After(time.Second):
		t.Fatal("push never unblocked")
	}

	env, err := mb.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", env.Message.Text)
}

func TestMailbox_BlockPolicyHonorsContext(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1, Policy: Block})
	push(t, mb, "first")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := mb.Push(ctx, NewEnvelope(note{Text: "second"}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailbox_DropNewestCountsDrops(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 2, Policy: DropNewest})

	push(t, mb, "a")
	push(t, mb, "b")
	err := mb.Push(context.Background(), NewEnvelope(note{Text: "c"}))
	assert.NoError(t, err, "drop_newest discards silently")
	assert.Equal(t, uint64(1), mb.Dropped())
	assert.Equal(t, 2, mb.Len(), "queue keeps the older envelopes")

	env, err := mb.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", env.Message.Text)
}

func TestMailbox_RejectReturnsFull(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1, Policy: Reject})
	push(t, mb, "a")

	err := mb.Push(context.Background(), NewEnvelope(note{Text: "b"}))
	assert.ErrorIs(t, err, ErrMailboxFull)
}

func TestMailbox_UnboundedNeverBlocks(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 0})
	for i := 0; i < 5000; i++ {
		push(t, mb, "x")
	}
	assert.Equal(t, 5000, mb.Len())
}

func TestMailbox_CloseDeliversRemainderThenErrors(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 8})
	push(t, mb, "a")
	push(t, mb, "b")

	mb.Close()

	err := mb.Push(context.Background(), NewEnvelope(note{Text: "late"}))
	assert.ErrorIs(t, err, ErrMailboxClosed, "push after close must fail")

	env, err := mb.Pop(context.Background())
	require.NoError(t, err, "buffered envelopes survive close")
	assert.Equal(t, "a", env.Message.Text)
	_, err = mb.Pop(context.Background())
	require.NoError(t, err)

	_, err = mb.Pop(context.Background())
	assert.ErrorIs(t, err, ErrMailboxClosed, "empty closed mailbox reports closed")
}

func TestMailbox_CloseIsIdempotent(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1})
	mb.Close()
	assert.NotPanics(t, func() { mb.Close() })
	assert.True(t, mb.Closed())
}

func TestMailbox_CloseWakesBlockedPusher(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1, Policy: Block})
	push(t, mb, "first")

	result := make(chan error, 1)
	go func() {
		result <- mb.Push(context.Background(), NewEnvelope(note{Text: "second"}))
	}()
	time.Sleep(20 * time.Millisecond)
	mb.Close()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrMailboxClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked push was not released by close")
	}
}

func TestMailbox_Drain(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 8})
	push(t, mb, "a")
	push(t, mb, "b")
	push(t, mb, "c")

	assert.Equal(t, 3, mb.Drain())
	assert.Equal(t, 0, mb.Len())
}

func TestMailbox_PopHonorsContext(t *testing.T) {
	mb := NewMailbox[note](MailboxConfig{Capacity: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := mb.Pop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
