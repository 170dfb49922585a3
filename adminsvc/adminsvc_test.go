package adminsvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/session"
)

type fakeTransport struct {
	sent [][]byte
}

func (t *fakeTransport) Send(p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	t.sent = append(t.sent, cp)
	return nil
}

func newTestSession(t *testing.T, id string) (*session.Session, *fakeTransport) {
	t.Helper()
	fc := clock.NewFakeAt(time.Date(2026, 8, 3, 9, 30, 0, 0, time.UTC))
	transport := &fakeTransport{}
	s := session.New(session.Config{
		ID:                id,
		Protocol:          session.FIX,
		Initiator:         true,
		HeartbeatInterval: 30 * time.Second,
		Transport:         transport,
		Clock:             fc,
	})
	s.ConfigureFIX("FIX.4.4", "CLIENT", "SERVER", "")
	return s, transport
}

func TestRegistryListAndGetSession(t *testing.T) {
	r := NewRegistry()
	s, _ := newTestSession(t, "sess-1")
	r.Register(s)

	info, ok := r.GetSession("sess-1")
	require.True(t, ok, "GetSession: session not found")
	require.Equal(t, "sess-1", info.ID)
	require.Equal(t, "FIX", info.Protocol)
	require.Equal(t, "DISCONNECTED", info.State)

	_, ok = r.GetSession("missing")
	require.False(t, ok, "missing session should not be found")

	list := r.ListSessions()
	require.Len(t, list, 1)
	require.Equal(t, "sess-1", list[0].ID)
}

func TestRegistryUnknownSessionErrors(t *testing.T) {
	r := NewRegistry()
	require.ErrorIs(t, r.Connect("nope"), ErrSessionNotFound)
	require.ErrorIs(t, r.Logout("nope"), ErrSessionNotFound)
}

func TestRegistryConnectAndDisconnect(t *testing.T) {
	r := NewRegistry()
	s, transport := newTestSession(t, "sess-1")
	r.Register(s)

	require.NoError(t, r.Connect("sess-1"))
	require.Empty(t, transport.sent, "Connect alone should not send a logon yet")
	info, _ := r.GetSession("sess-1")
	require.Equal(t, "CONNECTING", info.State)

	require.NoError(t, r.Disconnect("sess-1"))
	info, _ = r.GetSession("sess-1")
	require.Equal(t, "DISCONNECTED", info.State)
}

func TestRegistryIsEngineAvailable(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.IsEngineAvailable(), "new Registry should start available")
	r.SetAvailable(false)
	require.False(t, r.IsEngineAvailable())
}

func TestEventStreamPublishesStateChanges(t *testing.T) {
	es := NewEventStream()
	s, _ := newTestSession(t, "sess-1")
	s.AddListener(es)

	ch := es.Subscribe()
	require.NoError(t, s.Connect())

	select {
	case e := <-ch:
		require.Equal(t, "sess-1", e.SessionID)
		require.Equal(t, "CONNECTING", e.State)
	default:
		t.Fatal("expected a CONNECTING event on the subscriber channel")
	}
}

func TestEventStreamWriteToFramesJSON(t *testing.T) {
	es := NewEventStream()
	ch := make(chan Event, 1)
	ch <- Event{SessionID: "sess-1", State: "CONNECTING", Time: time.Unix(0, 0).UTC()}
	close(ch)

	var buf bufferWriter
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, es.WriteTo(ctx, ch, &buf))
	require.NotEmpty(t, buf.writes, "want at least a header and a payload write")

	var framed []byte
	for _, w := range buf.writes {
		framed = append(framed, w...)
	}
	var got Event
	payload := extractJSONPayload(framed)
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Equal(t, "sess-1", got.SessionID)
	require.Equal(t, "CONNECTING", got.State)
}

// bufferWriter records every byte slice a ctrlwire.Writer emits to its
// underlying io.Writer, one entry per Write call, so the test can inspect
// frame boundaries without depending on ctrlwire's header layout.
type bufferWriter struct {
	writes [][]byte
}

func (b *bufferWriter) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	b.writes = append(b.writes, cp)
	return len(p), nil
}

// extractJSONPayload strips ctrlwire's leading frame header bytes, locating
// the payload by its unambiguous opening brace rather than assuming a fixed
// header width.
func extractJSONPayload(framed []byte) []byte {
	for i, b := range framed {
		if b == '{' {
			return framed[i:]
		}
	}
	return framed
}
