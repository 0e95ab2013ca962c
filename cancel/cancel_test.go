package cancel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	items  []int
	pos    int
	closed bool
}

func (f *fakeStream) Next() (int, bool, error) {
	if f.pos >= len(f.items) {
		return 0, false, nil
	}
	v := f.items[f.pos]
	f.pos++
	return v, true, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func TestCancellableStream_DeliversAllItemsWhenNotCancelled(t *testing.T) {
	inner := &fakeStream{items: []int{1, 2, 3}}
	handle := NewHandle()
	cs := NewCancellableStream[int](inner, handle)

	var got []int
	for {
		v, ok, err := cs.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestCancellableStream_StopsAtNextYieldAfterCancel(t *testing.T) {
	inner := &fakeStream{items: []int{1, 2, 3, 4, 5}}
	handle := NewHandle()
	cs := NewCancellableStream[int](inner, handle)

	v, ok, err := cs.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	handle.Cancel()

	_, ok, err = cs.Next()
	require.NoError(t, err)
	assert.False(t, ok, "no further items should be delivered once cancelled")
	assert.True(t, inner.closed, "cancelling must close the inner stream")
}

func TestCancellableStream_CloseIsIdempotent(t *testing.T) {
	inner := &fakeStream{items: []int{1}}
	handle := NewHandle()
	cs := NewCancellableStream[int](inner, handle)

	require.NoError(t, cs.Close())
	require.NoError(t, cs.Close())
}

func TestHandle_CancelIsIdempotentAndObservable(t *testing.T) {
	h := NewHandle()
	assert.False(t, h.Cancelled())
	h.Cancel()
	h.Cancel()
	assert.True(t, h.Cancelled())
}
