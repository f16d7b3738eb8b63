package i2c

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DevfsTestSuite struct {
	suite.Suite
	dev *Devfs
}

func (s *DevfsTestSuite) SetupTest() {
	dev, err := NewDevfs(Config{})
	s.Require().NoError(err)
	s.dev = dev
}

func (s *DevfsTestSuite) TestDefaults() {
	s.Require().Equal(uint64(DefaultOpenRetries), s.dev.retries)

	dev, err := NewDevfs(Config{OpenRetries: -1})
	s.Require().NoError(err)
	s.Require().Equal(uint64(0), dev.retries)

	dev, err = NewDevfs(Config{OpenRetries: 7})
	s.Require().NoError(err)
	s.Require().Equal(uint64(7), dev.retries)
}

func (s *DevfsTestSuite) TestOpenMissingBus() {
	if runtime.GOOS != "linux" {
		s.T().Skip("i2c-dev is linux only")
	}
	conn, err := s.dev.Open(context.Background(), "/dev/i2c-999")
	s.Require().Error(err)
	s.Require().Nil(conn)
	s.Require().ErrorIs(err, os.ErrNotExist)
}

func (s *DevfsTestSuite) TestTransferOnNonBusNode() {
	path := filepath.Join(s.T().TempDir(), "plain")
	s.Require().NoError(os.WriteFile(path, []byte{0}, 0o600))

	conn, err := s.dev.Open(context.Background(), path)
	if err != nil {
		s.T().Skipf("platform not supported: %v", err)
	}
	err = conn.Transfer(context.Background(), []Message{
		{Addr: 0x54, Buf: []byte{0x04}},
		{Addr: 0x54, Flags: FlagRead, Buf: make([]byte, 3)},
	})
	s.Require().Error(err)
	s.Require().NoError(conn.Close())
	// a second close is a no-op
	s.Require().NoError(conn.Close())
}

func TestDevfsTestSuite(t *testing.T) {
	suite.Run(t, new(DevfsTestSuite))
}

func TestResolveAddr(t *testing.T) {
	cases := []struct {
		addr   int32
		tenBit bool
		wire   uint16
		flags  uint16
	}{
		{0x54, false, 0x54, 0},
		{0x1054, false, 0x1054, 0},
		{0xFFFF, false, 0xFFFF, 0},
		{0x2A5, true, 0x2A5, FlagTenBit},
		{0x3FF, true, 0x3FF, FlagTenBit},
	}
	for _, c := range cases {
		wire, flags, err := ResolveAddr(c.addr, c.tenBit)
		require.NoError(t, err, "%#x", c.addr)
		assert.Equal(t, c.wire, wire, "%#x", c.addr)
		assert.Equal(t, c.flags, flags, "%#x", c.addr)
	}

	for _, c := range []struct {
		addr   int32
		tenBit bool
	}{
		{0x10054, false},
		{-1, false},
		{0x400, true},
		{-1, true},
	} {
		_, _, err := ResolveAddr(c.addr, c.tenBit)
		assert.ErrorIs(t, err, ErrAddressRange, "%#x ten-bit %v", c.addr, c.tenBit)
	}
}

func TestTenBit(t *testing.T) {
	assert.Equal(t, TenBitAddr(0x2A5), TenBit(0x2A5))
}
