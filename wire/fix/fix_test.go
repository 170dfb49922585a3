package fix_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/wire/fix"
)

func TestChecksumLaw(t *testing.T) {
	msg := []byte("8=FIX.4.4\x019=5\x0135=0\x01")
	var want byte
	for _, b := range msg {
		want += b
	}
	require.Equal(t, want, fix.Checksum(msg))
}

func TestLogonHappyPath(t *testing.T) {
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	h := fix.HeaderFields{MsgSeqNum: 1, SenderCompID: "CLIENT", TargetCompID: "SERVER", SendingTime: ts}
	wire := fix.BuildLogon("FIX.4.4", h, 30, false, "")

	require.True(t, strings.HasPrefix(string(wire), "8=FIX.4.4\x019="), "unexpected header: %q", wire)
	require.Contains(t, string(wire), "35=A\x01", "missing msg type")
	require.True(t, strings.HasSuffix(string(wire), "\x01"), "missing trailing SOH: %q", wire)
	require.Contains(t, string(wire), "10=", "missing checksum trailer")

	n, err := fix.ExpectedLength(wire)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)

	msg, err := fix.WrapForReading(wire)
	require.NoError(t, err)
	require.Equal(t, fix.MsgTypeLogon, msg.MsgType())
	require.Equal(t, 1, msg.MsgSeqNum())
	v, _ := msg.Get(fix.TagHeartBtInt)
	require.Equal(t, "30", v)
}

func TestExpectedLengthNeedsMoreBytes(t *testing.T) {
	partial := []byte("8=FIX.4.4\x019=40\x0135=A\x01")
	n, err := fix.ExpectedLength(partial)
	require.NoError(t, err)
	require.Equal(t, -1, n, "expected -1 (need more)")
}

func TestChecksumMismatchRejected(t *testing.T) {
	h := fix.HeaderFields{MsgSeqNum: 1, SenderCompID: "C", TargetCompID: "S"}
	wire := fix.BuildHeartbeat("FIX.4.4", h, "")
	corrupt := append([]byte{}, wire...)
	corrupt[len(corrupt)-2] = '9' // mutate the checksum's last digit
	if corrupt[len(corrupt)-2] == wire[len(wire)-2] {
		corrupt[len(corrupt)-2] = '8'
	}
	_, err := fix.WrapForReading(corrupt)
	require.Error(t, err, "expected checksum mismatch error")
}

func TestResendRequestGap(t *testing.T) {
	h := fix.HeaderFields{MsgSeqNum: 1, SenderCompID: "SERVER", TargetCompID: "CLIENT"}
	wire := fix.BuildResendRequest("FIX.4.4", h, 5, 0)
	msg, err := fix.WrapForReading(wire)
	require.NoError(t, err)
	require.Equal(t, fix.MsgTypeResendRequest, msg.MsgType())
	begin, _ := msg.GetInt(fix.TagBeginSeqNo)
	end, _ := msg.GetInt(fix.TagEndSeqNo)
	require.Equal(t, 5, begin)
	require.Equal(t, 0, end)
}
