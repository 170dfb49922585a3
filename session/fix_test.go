package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/wire/fix"
)

func buildTestFIX(msgType string, seqNum int, sender, target string, now time.Time) []byte {
	h := fix.HeaderFields{MsgSeqNum: seqNum, SenderCompID: sender, TargetCompID: target, SendingTime: now}
	switch msgType {
	case fix.MsgTypeHeartbeat:
		return fix.BuildHeartbeat("FIX.4.4", h, "")
	default:
		return fix.BuildHeartbeat("FIX.4.4", h, "") // placeholder app message, MsgType irrelevant to gap logic
	}
}

func TestFIXResendOnGap(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 31, 0, 0, time.UTC))
	transport := &fakeTransport{}
	lst := &recordingListener{}

	s := New(Config{
		Protocol:  FIX,
		Transport: transport,
		Clock:     fc,
	})
	s.ConfigureFIX("FIX.4.4", "SERVER", "CLIENT", "")
	s.AddListener(lst)
	s.state = LoggedOn
	s.inboundExpected = 5

	seq7 := buildTestFIX(fix.MsgTypeHeartbeat, 7, "CLIENT", "SERVER", fc.Now())
	require.NoError(t, s.HandleInboundFIX(seq7))

	require.Len(t, transport.sent, 1, "want exactly one resend request")
	rr, err := fix.WrapForReading(transport.sent[0])
	require.NoError(t, err)
	require.Equal(t, fix.MsgTypeResendRequest, rr.MsgType())
	gotInt, _ := rr.GetInt(fix.TagBeginSeqNo)
	require.Equal(t, 5, gotInt)
	gotInt, _ = rr.GetInt(fix.TagEndSeqNo)
	require.Equal(t, 0, gotInt)
	require.Empty(t, lst.messages, "seq 7 must be held, not dispatched, while the gap is open")

	seq5 := buildTestFIX(fix.MsgTypeHeartbeat, 5, "CLIENT", "SERVER", fc.Now())
	require.NoError(t, s.HandleInboundFIX(seq5))
	seq6 := buildTestFIX(fix.MsgTypeHeartbeat, 6, "CLIENT", "SERVER", fc.Now())
	require.NoError(t, s.HandleInboundFIX(seq6))

	require.Len(t, lst.messages, 3, "want messages 5, 6, 7 dispatched after gap fill")
	for i, wantSeq := range []uint64{5, 6, 7} {
		require.Equal(t, wantSeq, lst.messages[i].seq, "dispatched[%d].seq", i)
	}
	require.False(t, s.fix.gapPending, "gapPending should clear once the gap is fully filled")
	require.EqualValues(t, 8, s.InboundExpected())

	seq8 := buildTestFIX(fix.MsgTypeHeartbeat, 8, "CLIENT", "SERVER", fc.Now())
	require.NoError(t, s.HandleInboundFIX(seq8))
	require.Len(t, lst.messages, 4)
	require.EqualValues(t, 8, lst.messages[3].seq, "normal dispatch should resume at seq 8")
}

func TestFIXSequenceTooLowWithoutPossDupIsFatal(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 31, 0, 0, time.UTC))
	transport := &fakeTransport{}
	s := New(Config{Protocol: FIX, Transport: transport, Clock: fc})
	s.ConfigureFIX("FIX.4.4", "SERVER", "CLIENT", "")
	s.state = LoggedOn
	s.inboundExpected = 5

	low := buildTestFIX(fix.MsgTypeHeartbeat, 3, "CLIENT", "SERVER", fc.Now())
	err := s.HandleInboundFIX(low)
	require.Error(t, err, "expected an error for a too-low sequence without PossDup")
	require.Equal(t, Disconnected, s.State())
}
