package recovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	ok, err := Static(true).Confirm(context.Background(), Request{FieldID: "notes"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Static(false).Confirm(context.Background(), Request{FieldID: "notes"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFunc(t *testing.T) {
	var got Request
	p := Func(func(_ context.Context, req Request) (bool, error) {
		got = req
		return req.Draft != "", nil
	})

	ok, err := p.Confirm(context.Background(), Request{FieldID: "notes", Draft: "Buy milk", Current: ""})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "notes", got.FieldID)
	assert.Equal(t, "Buy milk", got.Draft)
}

func TestUnavailable(t *testing.T) {
	ok, err := Unavailable{}.Confirm(context.Background(), Request{})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMessage(t *testing.T) {
	assert.Equal(t,
		"A saved draft was found for notes. Do you want to restore it?",
		Message(Request{FieldID: "notes"}))
}
