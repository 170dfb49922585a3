package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/wire/ouch"
)

func TestOUCHLoginAndOrderAcceptRoundTrip(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 31, 0, 0, time.UTC))
	transport := &fakeTransport{}
	lst := &recordingListener{}

	s := New(Config{
		Protocol:          OUCH,
		Initiator:         true,
		HeartbeatInterval: 5 * time.Second,
		Transport:         transport,
		Clock:             fc,
	})
	s.ConfigureOUCH("trdr01", "secret", "SESSION01")
	s.AddListener(lst)

	require.NoError(t, s.Connect())
	require.NoError(t, s.HandleConnected())
	require.Len(t, transport.sent, 1, "want exactly one login request")

	login, err := ouch.WrapLoginRequestForReading(transport.sent[0])
	require.NoError(t, err)
	require.Equal(t, "trdr01", login.Username())
	require.Equal(t, "SESSION01", login.RequestedSession())

	accepted := ouch.WrapLoginAcceptedForWriting().SetSequenceNumber(1).Bytes()
	require.NoError(t, s.HandleOUCHLoginResponse(accepted))
	require.Equal(t, LoggedOn, s.State())

	orderAccepted := ouch.WrapOrderAcceptedForWriting().
		SetToken("ORD0000000001").
		SetSide('B').
		SetOrderReferenceNumber(42).
		SetShares(100).
		SetSymbol("AAPL").
		SetPrice(150.0).
		SetFirm("FIRM").
		Bytes()
	require.NoError(t, s.HandleInboundOUCH(orderAccepted))
	require.Len(t, lst.messages, 1, "want one order-accepted dispatched")

	decoded, err := ouch.WrapOrderAcceptedForReading(lst.messages[0].raw)
	require.NoError(t, err)
	require.Equal(t, "ORD0000000001", decoded.Token())
	require.Equal(t, 150.0, decoded.Price())
}

func TestOUCHLoginRejectedDisconnects(t *testing.T) {
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 31, 0, 0, time.UTC))
	transport := &fakeTransport{}
	s := New(Config{Protocol: OUCH, Initiator: true, Transport: transport, Clock: fc})
	s.ConfigureOUCH("trader1", "secret", "SESSION01")

	require.NoError(t, s.Connect())
	require.NoError(t, s.HandleConnected())

	rejected := ouch.WrapOrderRejectedForWriting(ouch.ReasonSessionNotFound).Bytes()
	// OrderRejected and LoginRejected share wire type 'J', so this
	// assignment leaves the byte unchanged; it names the login-phase meaning.
	rejected[0] = ouch.TypeLoginRejected
	err := s.HandleOUCHLoginResponse(rejected)
	require.Error(t, err, "expected an error for a rejected login")
	require.Equal(t, Disconnected, s.State())
}
