package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialer_Online(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	d := NewDialer(ln.Addr().String(), time.Second)
	assert.True(t, d.Online(context.Background()))
}

func TestDialer_Offline(t *testing.T) {
	// Grab a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	d := NewDialer(addr, 500*time.Millisecond)
	assert.False(t, d.Online(context.Background()))
}

func TestDialer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDialer("192.0.2.1:443", time.Second)
	assert.False(t, d.Online(ctx))
}

func TestStatic(t *testing.T) {
	assert.True(t, Static(true).Online(context.Background()))
	assert.False(t, Static(false).Online(context.Background()))
}
