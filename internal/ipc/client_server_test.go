package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startServer(t *testing.T, handler Handler) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), SocketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, handler)
	}()
	return socketPath, cancel, serveDone
}

func TestSendRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	socketPath, cancel, serveDone := startServer(t, HandlerFunc(func(_ context.Context, req Request) Response {
		require.Equal(t, CommandResolve, req.Command)
		require.Equal(t, "config", req.Module)
		require.Equal(t, "USER", req.Section)
		return Response{OK: true, Config: json.RawMessage(`{"MAX_HISTORY":10}`), Message: "ok"}
	}))

	resp, err := Send(context.Background(), socketPath, Request{Command: CommandResolve, Module: "config", Section: "USER"}, 200*time.Millisecond)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.JSONEq(t, `{"MAX_HISTORY":10}`, string(resp.Config))
	require.Equal(t, "ok", resp.Message)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestResolveReturnsPayloadOrServerError(t *testing.T) {
	socketPath, cancel, serveDone := startServer(t, HandlerFunc(func(_ context.Context, req Request) Response {
		if req.Module != "config" {
			return Response{OK: false, Error: "module not published"}
		}
		return Response{OK: true, Config: json.RawMessage(`{"ENABLED":true}`)}
	}))

	payload, err := Resolve(context.Background(), socketPath, "config", "DEBUG", 200*time.Millisecond)
	require.NoError(t, err)
	require.JSONEq(t, `{"ENABLED":true}`, string(payload))

	_, err = Resolve(context.Background(), socketPath, "other", "", 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "module not published")

	cancel()
	require.NoError(t, <-serveDone)
}

func TestSendDecodeResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		_, _ = reader.ReadBytes('\n')
		_, _ = conn.Write([]byte("not-json\n"))
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: CommandPing}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestSendReadResponseError(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), SocketName)

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Send(context.Background(), socketPath, Request{Command: CommandPing}, 200*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read response")
}

func TestServeDecodeRequestErrorResponse(t *testing.T) {
	socketPath, cancel, serveDone := startServer(t, HandlerFunc(func(_ context.Context, _ Request) Response {
		return Response{OK: true}
	}))

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not-json\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(line, &resp))
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode request")

	cancel()
	require.NoError(t, <-serveDone)
}

func TestProbe(t *testing.T) {
	socketPath, cancel, serveDone := startServer(t, HandlerFunc(func(_ context.Context, req Request) Response {
		if req.Command == CommandPing {
			return Response{OK: true}
		}
		return Response{OK: false, Error: "bad"}
	}))

	alive, probeErr := Probe(context.Background(), socketPath, 200*time.Millisecond)
	require.NoError(t, probeErr)
	require.True(t, alive)

	cancel()
	require.NoError(t, <-serveDone)

	alive, probeErr = Probe(context.Background(), socketPath, 100*time.Millisecond)
	require.NoError(t, probeErr)
	require.False(t, alive)
}
