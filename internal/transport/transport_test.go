package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePeer speaks the framed protocol from the other end of two pipes
type fakePeer struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *fakePeer) readMessage(t *testing.T) map[string]any {
	t.Helper()

	var contentLength int
	for {
		line, err := p.in.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		require.True(t, ok)
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			require.NoError(t, err)
		}
	}

	body := make([]byte, contentLength)
	_, err := io.ReadFull(p.in, body)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg
}

func (p *fakePeer) writeMessage(t *testing.T, msg map[string]any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = fmt.Fprintf(p.out, "Content-Length: %d\r\n\r\n%s", len(data), data)
	require.NoError(t, err)
}

func newTransportPair(onNotify NotificationHandler) (*JsonRpcTransport, *fakePeer) {
	toPeerR, toPeerW := io.Pipe()
	fromPeerR, fromPeerW := io.Pipe()

	transport := NewJsonRpcTransport(toPeerW, fromPeerR, onNotify)
	peer := &fakePeer{in: bufio.NewReader(toPeerR), out: fromPeerW}
	return transport, peer
}

func TestSendRequest_RoundTrip(t *testing.T) {
	transport, peer := newTransportPair(nil)
	require.NoError(t, transport.Start())
	defer transport.Stop()

	go func() {
		msg := peer.readMessage(t)
		peer.writeMessage(t, map[string]any{
			"jsonrpc": "2.0",
			"id":      msg["id"],
			"result":  map[string]any{"ok": true},
		})
	}()

	result, err := transport.SendRequest("textDocument/resolveSymbol", map[string]any{"uri": "file:///src/A.fs"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(result))
}

func TestSendRequest_DemuxesOutOfOrderResponses(t *testing.T) {
	transport, peer := newTransportPair(nil)
	require.NoError(t, transport.Start())
	defer transport.Stop()

	// Answer the two requests in reverse order of arrival
	go func() {
		first := peer.readMessage(t)
		second := peer.readMessage(t)
		peer.writeMessage(t, map[string]any{"jsonrpc": "2.0", "id": second["id"], "result": "second"})
		peer.writeMessage(t, map[string]any{"jsonrpc": "2.0", "id": first["id"], "result": "first"})
	}()

	type reply struct {
		method string
		result json.RawMessage
		err    error
	}
	replies := make(chan reply, 2)

	go func() {
		r, err := transport.SendRequest("alpha", nil)
		replies <- reply{"alpha", r, err}
	}()
	// The peer reads sequentially, so order the writes
	time.Sleep(50 * time.Millisecond)
	go func() {
		r, err := transport.SendRequest("beta", nil)
		replies <- reply{"beta", r, err}
	}()

	for i := 0; i < 2; i++ {
		r := <-replies
		require.NoError(t, r.err)
		switch r.method {
		case "alpha":
			assert.Equal(t, `"first"`, string(r.result))
		case "beta":
			assert.Equal(t, `"second"`, string(r.result))
		}
	}
}

func TestNotificationsDispatchedToHandler(t *testing.T) {
	notified := make(chan string, 1)
	transport, peer := newTransportPair(func(method string, params json.RawMessage) {
		notified <- method
	})
	require.NoError(t, transport.Start())
	defer transport.Stop()

	peer.writeMessage(t, map[string]any{
		"jsonrpc": "2.0",
		"method":  "analysis/progress",
		"params":  map[string]any{"state": "checking"},
	})

	select {
	case method := <-notified:
		assert.Equal(t, "analysis/progress", method)
	case <-time.After(time.Second):
		t.Fatal("notification was not dispatched")
	}
}

func TestSendNotification_Framing(t *testing.T) {
	transport, peer := newTransportPair(nil)
	require.NoError(t, transport.Start())
	defer transport.Stop()

	done := make(chan map[string]any, 1)
	go func() {
		done <- peer.readMessage(t)
	}()

	require.NoError(t, transport.SendNotification("initialized", map[string]any{}))

	msg := <-done
	assert.Equal(t, "initialized", msg["method"])
	_, hasID := msg["id"]
	assert.False(t, hasID, "notifications carry no id")
}

func TestSendAfterStop(t *testing.T) {
	transport, _ := newTransportPair(nil)
	require.NoError(t, transport.Start())
	require.NoError(t, transport.Stop())

	_, err := transport.SendRequest("anything", nil)
	assert.Error(t, err)
	assert.Error(t, transport.SendNotification("anything", nil))
}
