package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestReadFrames(t *testing.T) {
	tr := &MockTransport{}

	bySize := func(size int) any {
		return mock.MatchedBy(func(frame []byte) bool { return len(frame) == size })
	}

	tr.On("Transaction", dice.TCODE_READ_BLOCK_REQUEST, dice.BaseAddr+0x100, bySize(512), dice.DefaultTimeoutMs).Return(nil).Once()
	tr.On("Transaction", dice.TCODE_READ_BLOCK_REQUEST, dice.BaseAddr+0x300, bySize(512), dice.DefaultTimeoutMs).Return(nil).Once()
	tr.On("Transaction", dice.TCODE_READ_QUADLET_REQUEST, dice.BaseAddr+0x500, bySize(4), dice.DefaultTimeoutMs).Return(nil).Once()

	frames := make([]byte, 2*dice.MaxFrameSize+4)
	require.NoError(t, dice.ReadFrames(tr, 0x100, frames, dice.DefaultTimeoutMs), "ReadFrames should succeed")
	tr.AssertExpectations(t)
}

func TestWriteFrames(t *testing.T) {
	t.Run("Quadlet", func(t *testing.T) {
		tr := &MockTransport{}
		tr.On("Transaction", dice.TCODE_WRITE_QUADLET_REQUEST, dice.BaseAddr+0x10, []byte{0, 0, 0, 1}, 100).Return(nil).Once()

		require.NoError(t, dice.WriteFrames(tr, 0x10, []byte{0, 0, 0, 1}, 100), "WriteFrames should succeed")
		tr.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		tr := &MockTransport{}
		tr.On("Transaction", dice.TCODE_WRITE_BLOCK_REQUEST, mock.Anything, mock.Anything, mock.Anything).
			Return(dice.ErrTimeout).Once()

		err := dice.WriteFrames(tr, 0x10, make([]byte, 8), 100)
		assert.ErrorIs(t, err, dice.ErrTimeout, "The error of the transport should be wrapped")
		tr.AssertExpectations(t)
	})

	t.Run("NilTransport", func(t *testing.T) {
		assert.Error(t, dice.WriteFrames(nil, 0x10, make([]byte, 4), 100))
	})
}

func TestTransactionCode(t *testing.T) {
	assert.True(t, dice.TCODE_READ_QUADLET_REQUEST.IsRead())
	assert.True(t, dice.TCODE_READ_BLOCK_REQUEST.IsRead())
	assert.False(t, dice.TCODE_WRITE_BLOCK_REQUEST.IsRead())
	assert.Equal(t, "write-quadlet-request", dice.TCODE_WRITE_QUADLET_REQUEST.String())
}

func TestWithDeviceLock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		l := &MockLocker{}
		l.On("Lock").Return(nil).Once()
		l.On("Unlock").Return(nil).Once()

		called := false
		err := dice.WithDeviceLock(l, func() error {
			called = true
			return nil
		})
		require.NoError(t, err, "WithDeviceLock should succeed")
		assert.True(t, called, "fn should be called while locked")
		l.AssertExpectations(t)
	})

	t.Run("UnlockOnError", func(t *testing.T) {
		l := &MockLocker{}
		l.On("Lock").Return(nil).Once()
		l.On("Unlock").Return(nil).Once()

		errFn := errors.New("write failed")
		err := dice.WithDeviceLock(l, func() error { return errFn })
		assert.ErrorIs(t, err, errFn, "The error of fn should be returned")
		l.AssertExpectations(t)
	})

	t.Run("LockFailure", func(t *testing.T) {
		l := &MockLocker{}
		errLock := errors.New("busy")
		l.On("Lock").Return(errLock).Once()

		err := dice.WithDeviceLock(l, func() error {
			t.Error("fn should not be called without the lock")
			return nil
		})
		assert.ErrorIs(t, err, errLock, "The failure to lock should be returned")
		l.AssertNotCalled(t, "Unlock")
	})

	t.Run("UnlockFailure", func(t *testing.T) {
		l := &MockLocker{}
		errFn := errors.New("write failed")
		errUnlock := errors.New("gone")
		l.On("Lock").Return(nil).Once()
		l.On("Unlock").Return(errUnlock).Once()

		err := dice.WithDeviceLock(l, func() error { return errFn })
		assert.ErrorIs(t, err, errFn, "The error of fn should be kept")
		assert.ErrorIs(t, err, errUnlock, "The error of unlock should be joined")
	})

	t.Run("NilLocker", func(t *testing.T) {
		assert.NoError(t, dice.WithDeviceLock(nil, func() error { return nil }))
	})
}
