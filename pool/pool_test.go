package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/pool"
	"code.hybscloud.com/xconnect/wire/ouch"
	"code.hybscloud.com/xconnect/wire/sbe"
)

func TestRegistryGetReuses(t *testing.T) {
	r := pool.NewRegistry()
	r.Register("enter-order", 49)

	buf := r.Get("enter-order")
	*buf = append(*buf, 1, 2, 3)
	r.Put("enter-order", buf)

	buf2 := r.Get("enter-order")
	require.Empty(t, *buf2, "expected reset buffer")
}

func TestRegistryGetUnregisteredPanics(t *testing.T) {
	require.Panics(t, func() { pool.NewRegistry().Get("missing") }, "expected panic for unregistered kind")
}

func TestCreateIsUnpooled(t *testing.T) {
	a := pool.Create(16)
	b := pool.Create(16)
	a = append(a, 1)
	require.Empty(t, b, "Create buffers must not alias")
}

func TestFIXReaderDispatch(t *testing.T) {
	var r pool.Reader = pool.FIXReader{}
	partial := []byte("8=FIX.4.4\x019=40\x0135=A\x01")
	n, err := r.ExpectedLength(partial)
	require.NoError(t, err)
	require.Equal(t, -1, n)
}

func TestOUCHReaderDispatch(t *testing.T) {
	r := pool.OUCHReader{Phase: ouch.PhaseOrderEntry, Direction: ouch.Inbound, Version: ouch.V42}
	wire := ouch.WrapEnterOrderForWriting().SetToken("T").Bytes()
	n, err := r.ExpectedLength(wire)
	require.NoError(t, err)
	require.Equal(t, 49, n)
}

func TestSBEReaderDispatch(t *testing.T) {
	r := pool.SBEReader{Framed: sbe.NoFrameLength, BlockLengths: sbe.BlockLengths}
	wire := sbe.WrapNegotiateForWriting().SetSessionID(1).Bytes()
	n, err := r.ExpectedLength(wire)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)

	tid, err := pool.PeekTemplateID(wire)
	require.NoError(t, err)
	require.Equal(t, sbe.TemplateNegotiate, tid)
}
