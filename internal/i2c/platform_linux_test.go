//go:build linux

package i2c

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestOpenMissingNode(t *testing.T) {
	fd, err := Open("/dev/i2c-999")
	assert.Equal(t, -1, fd)
	require.Error(t, err)
	assert.ErrorIs(t, err, unix.ENOENT)
	assert.False(t, Interrupted(err))
}

func TestTransferOnRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-bus")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	fd, err := Open(path)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, Close(fd))
	}()

	read := make([]byte, 2)
	err = Transfer(fd, []Message{
		{Addr: 0x54, Buf: []byte{0x04}},
		{Addr: 0x54, Flags: FlagRead, Buf: read},
	})
	assert.ErrorIs(t, err, unix.ENOTTY)
}

func TestTransferRejectsOversizedMessage(t *testing.T) {
	err := Transfer(-1, []Message{{Addr: 0x10, Flags: FlagRead, Buf: make([]byte, MaxMessageLength+1)}})
	assert.ErrorIs(t, err, ErrMessageTooLong)

	err = Transfer(-1, make([]Message, MaxMessages+1))
	assert.ErrorIs(t, err, ErrTooManyMessages)
}

func TestTransferWithoutMessages(t *testing.T) {
	assert.NoError(t, Transfer(-1, nil))
}

func TestCloseInvalidDescriptor(t *testing.T) {
	assert.ErrorIs(t, Close(-1), unix.EBADF)
}
