package sbe_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/wire/sbe"
)

func TestNegotiateRoundTrip(t *testing.T) {
	wire := sbe.WrapNegotiateForWriting().SetSessionID(7).SetTimestamp(123456).SetFirmID(9001).Bytes()

	tid, err := sbe.PeekTemplateID(wire)
	require.NoError(t, err)
	require.Equal(t, sbe.TemplateNegotiate, tid)

	n, err := sbe.ExpectedLength(sbe.NoFrameLength, wire, sbe.BlockLengths, nil)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)

	out, err := sbe.WrapNegotiateForReading(wire)
	require.NoError(t, err)
	require.EqualValues(t, 7, out.SessionID())
	require.EqualValues(t, 123456, out.Timestamp())
	require.EqualValues(t, 9001, out.FirmID())
}

func TestEstablishAndAck(t *testing.T) {
	est := sbe.WrapEstablishForWriting().SetSessionID(1).SetNextSeqNo(1).SetKeepAliveIntervalMs(1000).Bytes()
	h, err := sbe.DecodeHeader(est)
	require.NoError(t, err)
	require.Equal(t, sbe.TemplateEstablish, h.TemplateID)

	ack := sbe.WrapEstablishAckForWriting().SetSessionID(1).SetNextSeqNo(1).Bytes()
	out, err := sbe.WrapEstablishAckForReading(ack)
	require.NoError(t, err)
	require.EqualValues(t, 1, out.SessionID())
	require.EqualValues(t, 1, out.NextSeqNo())
}

func TestTerminateRoundTrip(t *testing.T) {
	wire := sbe.WrapTerminateForWriting().SetSessionID(5).SetReason(2).Bytes()
	out, err := sbe.WrapTerminateForReading(wire)
	require.NoError(t, err)
	require.EqualValues(t, 5, out.SessionID())
	require.EqualValues(t, 2, out.Reason())
}

func TestNegotiateResponseAcceptedFlag(t *testing.T) {
	accepted := sbe.WrapNegotiateResponseForWriting().SetSessionID(1).SetAccepted(1).Bytes()
	out, err := sbe.WrapNegotiateResponseForReading(accepted)
	require.NoError(t, err)
	require.EqualValues(t, 1, out.Accepted())

	rejected := sbe.WrapNegotiateResponseForWriting().SetSessionID(1).SetAccepted(0).Bytes()
	out, err = sbe.WrapNegotiateResponseForReading(rejected)
	require.NoError(t, err)
	require.EqualValues(t, 0, out.Accepted())
}

func TestPillarLoginAndStreamOpen(t *testing.T) {
	login := sbe.WrapLoginForWriting().SetUsername("trader1").SetPassword("pw").SetSessionID(3).SetHeartbeatIntervalMs(500).Bytes()
	out, err := sbe.WrapLoginForReading(login)
	require.NoError(t, err)
	require.Equal(t, "trader1", out.Username())
	require.EqualValues(t, 3, out.SessionID())

	inbound := sbe.WrapStreamOpenForWriting().SetSessionID(3).SetStreamID(1).SetDirection(0).Bytes()
	outbound := sbe.WrapStreamOpenForWriting().SetSessionID(3).SetStreamID(2).SetDirection(1).Bytes()

	in, err := sbe.WrapStreamOpenForReading(inbound)
	require.NoError(t, err)
	out2, err := sbe.WrapStreamOpenForReading(outbound)
	require.NoError(t, err)
	require.EqualValues(t, 0, in.Direction())
	require.EqualValues(t, 1, out2.Direction())

	resp := sbe.WrapStreamOpenResponseForWriting().SetStreamID(1).SetNextSeqNo(1).Bytes()
	r, err := sbe.WrapStreamOpenResponseForReading(resp)
	require.NoError(t, err)
	require.EqualValues(t, 1, r.StreamID())
	require.EqualValues(t, 1, r.NextSeqNo())
}

func TestExpectedLengthWithFramePrefix(t *testing.T) {
	inner := sbe.WrapNegotiateForWriting().SetSessionID(1).Bytes()
	framed := make([]byte, 2+len(inner))
	framed[0] = byte(len(framed))
	framed[1] = byte(len(framed) >> 8)
	copy(framed[2:], inner)

	n, err := sbe.ExpectedLength(sbe.WithFrameLength, framed, sbe.BlockLengths, nil)
	require.NoError(t, err)
	require.Equal(t, len(framed), n)

	partial := framed[:len(framed)-1]
	n, err = sbe.ExpectedLength(sbe.WithFrameLength, partial, sbe.BlockLengths, nil)
	require.NoError(t, err)
	require.Equal(t, -1, n, "expected -1 (need more)")
}

func TestUnknownTemplateRejected(t *testing.T) {
	data := make([]byte, sbe.HeaderLength)
	_ = sbe.EncodeHeader(data, sbe.Header{TemplateID: 9999})
	_, err := sbe.ExpectedLength(sbe.NoFrameLength, data, sbe.BlockLengths, nil)
	require.ErrorIs(t, err, sbe.ErrUnknownTemplate)
}
