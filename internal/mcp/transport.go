package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// transport delivers one JSON-RPC payload and returns the raw response
// document. Implementations serialize concurrent round trips.
type transport interface {
	roundTrip(ctx context.Context, payload []byte) ([]byte, error)
	close() error
}

const shutdownGrace = 5 * time.Second

// stdioTransport speaks line-delimited JSON-RPC with a child process.
type stdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader

	mu sync.Mutex
	// broken marks the pipe unusable after a failed or abandoned read;
	// the next response line would belong to the earlier request.
	broken bool
}

func dialStdio(config ServerConfig) (*stdioTransport, error) {
	cmd := exec.Command(config.Command, config.Args...)
	cmd.Env = os.Environ()
	for key, value := range config.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", config.Command, err)
	}
	return &stdioTransport{
		cmd:    cmd,
		stdin:  stdin,
		reader: bufio.NewReader(stdout),
	}, nil
}

func (t *stdioTransport) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.broken {
		return nil, errors.New("stdio transport is broken")
	}
	if _, err := t.stdin.Write(append(payload, '\n')); err != nil {
		t.broken = true
		return nil, fmt.Errorf("write request: %w", err)
	}

	type lineResult struct {
		line []byte
		err  error
	}
	lines := make(chan lineResult, 1)
	go func() {
		line, err := t.reader.ReadBytes('\n')
		lines <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		t.broken = true
		return nil, ctx.Err()
	case result := <-lines:
		if result.err != nil {
			t.broken = true
			return nil, fmt.Errorf("read response: %w", result.err)
		}
		return result.line, nil
	}
}

func (t *stdioTransport) close() error {
	_ = t.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- t.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownGrace):
		_ = t.cmd.Process.Kill()
		return <-done
	}
}

// httpTransport posts each request to the server's /rpc endpoint.
type httpTransport struct {
	url    string
	client *http.Client
}

func dialHTTP(ctx context.Context, config ServerConfig) (*httpTransport, error) {
	t := &httpTransport{
		url:    strings.TrimRight(config.URL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check: status %d", resp.StatusCode)
	}
	return t, nil
}

func (t *httpTransport) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/rpc", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (t *httpTransport) close() error {
	return nil
}

// wsTransport exchanges JSON-RPC messages over one websocket.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, config ServerConfig) (*wsTransport, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, config.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", config.URL, err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	deadline, _ := ctx.Deadline()
	_ = t.conn.SetWriteDeadline(deadline)
	_ = t.conn.SetReadDeadline(deadline)
	if err := t.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func (t *wsTransport) close() error {
	return t.conn.Close()
}
