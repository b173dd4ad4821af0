package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/renamekit/renamer/pkg/types"
)

const (
	receiveTimeout = 30 * time.Second
)

var _ types.Transport = &JsonRpcTransport{}

// NotificationHandler is invoked for server-initiated notifications, such as
// analysis progress reports from the checker
type NotificationHandler func(method string, params json.RawMessage)

// JsonRpcTransport handles Content-Length framed JSON-RPC communication with
// the checker process
type JsonRpcTransport struct {
	writer    io.Writer
	reader    *bufio.Reader
	onNotify  NotificationHandler
	requestID int64
	responses map[int64]chan json.RawMessage
	mu        sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}
}

// NewJsonRpcTransport creates a new JSON-RPC transport over the given streams
func NewJsonRpcTransport(writer io.Writer, reader io.Reader, onNotify NotificationHandler) *JsonRpcTransport {
	return &JsonRpcTransport{
		writer:    writer,
		reader:    bufio.NewReader(reader),
		onNotify:  onNotify,
		responses: make(map[int64]chan json.RawMessage),
		done:      make(chan struct{}),
	}
}

func (t *JsonRpcTransport) Start() error {
	slog.Debug("Starting JSON-RPC transport")
	go t.readMessages()
	return nil
}

func (t *JsonRpcTransport) Stop() error {
	if !t.isClosed() {
		slog.Debug("Stopping JSON-RPC transport")
		close(t.done)
	}
	return nil
}

func (t *JsonRpcTransport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *JsonRpcTransport) readMessages() {
	defer func() {
		_ = t.Stop()
	}()

	for {
		if t.isClosed() {
			return
		}

		body, err := t.readMessage()
		if err != nil {
			if !t.isClosed() {
				slog.Error("Failed to read JSON-RPC message", "error", err)
			}
			return
		}
		t.handleMessage(body)
	}
}

// readMessage reads one Content-Length framed message from the stream
func (t *JsonRpcTransport) readMessage() ([]byte, error) {
	var contentLength int

	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read header line: %w", err)
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		// Blank line terminates the header block
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line: %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			contentLength, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length value: %w", err)
			}
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

func (t *JsonRpcTransport) handleMessage(content []byte) {
	var msg struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(content, &msg); err != nil {
		slog.Error("Failed to unmarshal JSON-RPC message", "error", err, "content", string(content))
		return
	}

	// A message without an id is a server notification
	if msg.ID == nil {
		if t.onNotify != nil && msg.Method != "" {
			t.onNotify(msg.Method, msg.Params)
		}
		return
	}

	var id int64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		slog.Error("Failed to unmarshal JSON-RPC message ID", "error", err, "raw_id", string(msg.ID))
		return
	}

	t.mu.RLock()
	ch, ok := t.responses[id]
	t.mu.RUnlock()

	if ok {
		if msg.Error != nil {
			ch <- msg.Error
		} else {
			ch <- msg.Result
		}
	}
}

// SendRequest sends a JSON-RPC request and waits for the response
func (t *JsonRpcTransport) SendRequest(method string, params any) (json.RawMessage, error) {
	if t.isClosed() {
		return nil, fmt.Errorf("cannot send request: transport is closed")
	}

	id := atomic.AddInt64(&t.requestID, 1)
	startTime := time.Now()

	slog.Debug("Sending JSON-RPC request", "request_id", id, "method", method)

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON-RPC request: %w", err)
	}

	ch := make(chan json.RawMessage, 1)
	t.mu.Lock()
	t.responses[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.responses, id)
		t.mu.Unlock()
	}()

	if err := t.writeMessage(data); err != nil {
		return nil, fmt.Errorf("failed to write JSON-RPC request: %w", err)
	}

	select {
	case response := <-ch:
		slog.Debug("Received JSON-RPC response",
			"request_id", id,
			"method", method,
			"duration_ms", time.Since(startTime).Milliseconds())
		return response, nil
	case <-time.After(receiveTimeout):
		return nil, fmt.Errorf("timeout waiting for response to method %s", method)
	}
}

// SendNotification sends a JSON-RPC notification (no response expected)
func (t *JsonRpcTransport) SendNotification(method string, params any) error {
	if t.isClosed() {
		return fmt.Errorf("cannot send notification: transport is closed")
	}

	slog.Debug("Sending JSON-RPC notification", "method", method)

	notification := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON-RPC notification: %w", err)
	}

	return t.writeMessage(data)
}

func (t *JsonRpcTransport) writeMessage(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := t.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write JSON-RPC message header: %w", err)
	}

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON-RPC message data: %w", err)
	}

	return nil
}
