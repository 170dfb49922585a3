// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ctrlwire_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/internal/ctrlwire"
)

type stateChangeEvent struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

func TestReadWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := ctrlwire.NewWriter(&buf)

	events := []stateChangeEvent{
		{SessionID: "FIX-CLIENT-SERVER", State: "LOGGED_ON"},
		{SessionID: "OUCH-ORD1", State: "LOGGED_IN"},
	}
	for _, ev := range events {
		b, err := json.Marshal(ev)
		require.NoError(t, err, "marshal")
		_, err = w.Write(b)
		require.NoError(t, err, "write")
	}

	r := ctrlwire.NewReader(&buf)
	got := make([]byte, 256)
	for _, want := range events {
		n, err := r.Read(got)
		require.NoError(t, err, "read")
		var ev stateChangeEvent
		require.NoError(t, json.Unmarshal(got[:n], &ev), "unmarshal")
		require.Equal(t, want, ev)
	}
	_, err := r.Read(got)
	require.ErrorIs(t, err, io.EOF)
}

func TestPipeCarriesCommandAndEvent(t *testing.T) {
	r, w := ctrlwire.NewPipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 64)
		n, err := r.Read(buf)
		if !assert.NoError(t, err, "pipe read") {
			return
		}
		assert.Equal(t, "resetSequence", string(buf[:n]))
	}()
	_, err := w.Write([]byte("resetSequence"))
	require.NoError(t, err, "pipe write")
	<-done
}

func TestTooLongRejected(t *testing.T) {
	// WithReadLimit only constrains the reader side: the writer frames the
	// 16-byte message as usual, and the limited reader rejects it.
	var buf bytes.Buffer
	w := ctrlwire.NewWriter(&buf)
	_, err := w.Write(make([]byte, 16))
	require.NoError(t, err, "write")

	r := ctrlwire.NewReader(&buf, ctrlwire.WithReadLimit(4))
	_, err = r.Read(make([]byte, 64))
	require.ErrorIs(t, err, ctrlwire.ErrTooLong)
}
