package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/wire/sbe"
)

func TestSBENegotiateEstablishStreamOpenRoundTrip(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 32, 0, 0, time.UTC))
	transport := &fakeTransport{}
	lst := &recordingListener{}

	s := New(Config{
		Protocol:          SBEFamily,
		Initiator:         true,
		HeartbeatInterval: 5 * time.Second,
		Transport:         transport,
		Clock:             fc,
	})
	s.ConfigureSBE(7, 2)
	s.AddListener(lst)

	require.NoError(t, s.Connect())
	require.NoError(t, s.HandleConnected())
	require.Len(t, transport.sent, 1, "want exactly one Negotiate sent")

	negotiate, err := sbe.WrapNegotiateForReading(transport.sent[0])
	require.NoError(t, err)
	require.Equal(t, uint64(7), negotiate.SessionID())

	negotiateResponse := sbe.WrapNegotiateResponseForWriting().
		SetSessionID(7).
		SetRequestTimestamp(negotiate.Timestamp()).
		SetAccepted(1).
		Bytes()
	require.NoError(t, s.HandleSBENegotiateResponse(negotiateResponse))
	require.Len(t, transport.sent, 2, "want Establish sent after negotiate accepted")

	establish, err := sbe.WrapEstablishForReading(transport.sent[1])
	require.NoError(t, err)
	require.Equal(t, uint64(7), establish.SessionID())

	establishAck := sbe.WrapEstablishAckForWriting().SetSessionID(7).SetNextSeqNo(1).Bytes()
	require.NoError(t, s.HandleSBEEstablishAck(establishAck))
	require.NotEqual(t, LoggedOn, s.State(), "want still pending until both streams open")

	require.NoError(t, s.OpenSBEStream(1, StreamOutbound))
	require.NoError(t, s.OpenSBEStream(2, StreamInbound))
	require.Len(t, transport.sent, 4, "want one StreamOpen per requested stream")

	streamOpen1, err := sbe.WrapStreamOpenForReading(transport.sent[2])
	require.NoError(t, err)
	require.Equal(t, uint32(1), streamOpen1.StreamID())
	require.Equal(t, byte(StreamOutbound), streamOpen1.Direction())

	resp1 := sbe.WrapStreamOpenResponseForWriting().SetStreamID(1).SetNextSeqNo(1).Bytes()
	require.NoError(t, s.HandleSBEStreamOpenResponse(resp1, StreamOutbound))
	require.NotEqual(t, LoggedOn, s.State(), "want still pending after only one of two streams")

	resp2 := sbe.WrapStreamOpenResponseForWriting().SetStreamID(2).SetNextSeqNo(1).Bytes()
	require.NoError(t, s.HandleSBEStreamOpenResponse(resp2, StreamInbound))
	require.Equal(t, LoggedOn, s.State(), "want LOGGED_ON once every required stream is open")

	appMsg := sbe.WrapStreamOpenResponseForWriting().SetStreamID(2).SetNextSeqNo(9).Bytes()
	require.NoError(t, s.HandleInboundSBE(2, appMsg))
	require.Len(t, lst.messages, 1, "want the application message dispatched to listeners")
	require.Equal(t, uint64(1), lst.messages[0].seq, "want the stream's tracked NextSeqNo used as the dispatch seq")
}

func TestSBENegotiateRejectedDisconnects(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 32, 0, 0, time.UTC))
	transport := &fakeTransport{}
	s := New(Config{Protocol: SBEFamily, Initiator: true, Transport: transport, Clock: fc})
	s.ConfigureSBE(7, 1)

	require.NoError(t, s.Connect())
	require.NoError(t, s.HandleConnected())

	rejected := sbe.WrapNegotiateResponseForWriting().SetSessionID(7).SetAccepted(0).Bytes()
	err := s.HandleSBENegotiateResponse(rejected)
	require.Error(t, err, "expected an error for a rejected negotiate")
	require.Equal(t, Disconnected, s.State())
}
