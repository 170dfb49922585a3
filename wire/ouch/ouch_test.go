package ouch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/wire/ouch"
)

func TestEnterOrderRoundTrip(t *testing.T) {
	in := ouch.WrapEnterOrderForWriting().
		SetToken("ORD0000000001").
		SetSide('B').
		SetShares(100).
		SetSymbol("AAPL").
		SetPrice(150.0).
		SetTimeInForce(99999).
		SetFirm("TEST").
		SetDisplay('Y').
		SetCapacity('O').
		SetCrossType('N').
		SetCustomerType('R')
	wire := in.Bytes()
	require.Len(t, wire, 49)
	require.Equal(t, ouch.TypeEnterOrder, wire[0])

	n, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Inbound, ouch.V42, wire)
	require.NoError(t, err)
	require.Equal(t, 49, n)

	out, err := ouch.WrapEnterOrderForReading(wire)
	require.NoError(t, err)
	require.Equal(t, "ORD0000000001", out.Token())
	require.Equal(t, "AAPL", out.Symbol())
	require.Equal(t, 150.0, out.Price())
	require.EqualValues(t, 100, out.Shares())
}

func TestOrderAcceptedRoundTrip(t *testing.T) {
	in := ouch.WrapOrderAcceptedForWriting().
		SetToken("ORD0000000001").
		SetSide('B').
		SetOrderReferenceNumber(42).
		SetShares(100).
		SetSymbol("AAPL").
		SetPrice(150.0).
		SetTimeInForce(99999).
		SetFirm("TEST").
		SetVersion(42)
	wire := in.Bytes()
	require.Len(t, wire, 55)

	n, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Outbound, ouch.V42, wire)
	require.NoError(t, err)
	require.Equal(t, 55, n)

	out, err := ouch.WrapOrderAcceptedForReading(wire)
	require.NoError(t, err)
	require.Equal(t, "ORD0000000001", out.Token())
	require.Equal(t, 150.0, out.Price(), "want raw 1500000 scaled")
	require.EqualValues(t, 42, out.OrderReferenceNumber())
}

func TestModifyOrderVsOrderModifiedShareWireByte(t *testing.T) {
	modify := ouch.WrapModifyOrderForWriting().SetToken("ORD0000000001").SetSide('B').SetShares(50).Bytes()
	require.Equal(t, ouch.TypeModifyOrder, modify[0])

	n, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Inbound, ouch.V42, modify)
	require.NoError(t, err)
	require.Equal(t, 23, n, "inbound ModifyOrder length")

	modified := ouch.WrapOrderModifiedForWriting().
		SetToken("ORD0000000001").SetSide('B').SetShares(50).SetPrice(151.0).Bytes()
	require.Equal(t, ouch.TypeOrderModified, modified[0])
	n, err = ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Outbound, ouch.V42, modified)
	require.NoError(t, err)
	require.Equal(t, 28, n, "outbound OrderModified length")

	out, err := ouch.WrapOrderModifiedForReading(modified)
	require.NoError(t, err)
	require.Equal(t, 151.0, out.Price())
}

func TestOrderRejectedReason(t *testing.T) {
	wire := ouch.WrapOrderRejectedForWriting(ouch.ReasonInvalidPrice).Bytes()
	n, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Outbound, ouch.V42, wire)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	out, err := ouch.WrapRejectedForReading(wire)
	require.NoError(t, err)
	require.Equal(t, ouch.ReasonInvalidPrice, out.Reason())
}

func TestLoginRequestAcceptedRoundTrip(t *testing.T) {
	req := ouch.WrapLoginRequestForWriting().
		SetUsername("user01").
		SetPassword("secretpass").
		SetRequestedSession("").
		SetRequestedSequenceNum(1).
		SetHeartbeatIntervalMs(1000).
		Bytes()
	n, err := ouch.ExpectedLength(ouch.PhaseLogin, ouch.Inbound, ouch.V42, req)
	require.NoError(t, err)
	require.Equal(t, 39, n)
	out, err := ouch.WrapLoginRequestForReading(req)
	require.NoError(t, err)
	require.Equal(t, "user01", out.Username())
	require.Equal(t, "secretpass", out.Password())

	accepted := ouch.WrapLoginAcceptedForWriting().SetSequenceNumber(1).Bytes()
	n, err = ouch.ExpectedLength(ouch.PhaseLogin, ouch.Outbound, ouch.V42, accepted)
	require.NoError(t, err)
	require.Equal(t, 11, n)
	la, err := ouch.WrapLoginAcceptedForReading(accepted)
	require.NoError(t, err)
	require.EqualValues(t, 1, la.SequenceNumber())
}

func TestExpectedLengthNeedsMoreBytesV50Appendage(t *testing.T) {
	// Fixed OrderAccepted body plus a 2-byte appendage-length prefix
	// declaring more appendage bytes than are actually present.
	body := ouch.WrapOrderAcceptedForWriting().SetToken("T").Bytes()
	partial := append(body, 0x00, 0x05) // declares 5 appendage bytes, none supplied
	n, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Outbound, ouch.V50, partial)
	require.NoError(t, err)
	require.Equal(t, -1, n, "expected -1 (need more)")
}

func TestAppendageRoundTrip(t *testing.T) {
	list := []ouch.Appendage{
		{Tag: 1, Data: []byte("firm-a")},
		{Tag: 2, Data: []byte("x")},
	}
	wire := ouch.EncodeAppendages(list)
	out, err := ouch.ParseAppendages(wire)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "firm-a", string(out[0].Data))
	require.EqualValues(t, 1, out[0].Tag)
	require.Equal(t, "x", string(out[1].Data))
	require.EqualValues(t, 2, out[1].Tag)
}

func TestAppendageTruncated(t *testing.T) {
	wire := []byte{1, 0, 10, 'a', 'b'} // declares 10 bytes, only 2 present
	_, err := ouch.ParseAppendages(wire)
	require.Error(t, err, "expected truncated appendage error")
}

func TestUnknownTypeRejected(t *testing.T) {
	_, err := ouch.ExpectedLength(ouch.PhaseOrderEntry, ouch.Inbound, ouch.V42, []byte{'Z'})
	require.ErrorIs(t, err, ouch.ErrUnknownType)
}
