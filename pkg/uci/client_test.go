package uci_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChizhovVadim/eloarena/internal/stub"
	"github.com/ChizhovVadim/eloarena/pkg/uci"
)

const stubEnv = "ELOARENA_STUB_BEHAVIOR"

// The test binary doubles as a stub engine when stubEnv is set.
func TestMain(m *testing.M) {
	if behavior := os.Getenv(stubEnv); behavior != "" {
		os.Exit(stub.Main(stub.Behavior(behavior), os.Stdin, os.Stdout))
	}
	os.Exit(m.Run())
}

func startStub(t *testing.T, behavior stub.Behavior) (*uci.Client, error) {
	t.Helper()
	var options = uci.DefaultOptions()
	options.Name = string(behavior)
	options.Env = []string{stubEnv + "=" + string(behavior)}
	options.MoveTimeout = 300 * time.Millisecond
	options.ReadyTimeout = 300 * time.Millisecond
	options.QuitTimeout = 300 * time.Millisecond
	var client, err = uci.Start(context.Background(), os.Args[0], options)
	if client != nil {
		t.Cleanup(func() { client.Close() })
	}
	return client, err
}

func TestStartMissingExecutable(t *testing.T) {
	var _, err = uci.Start(context.Background(), filepath.Join(t.TempDir(), "no-such-engine"), uci.DefaultOptions())
	var spawnErr *uci.SpawnError
	require.ErrorAs(t, err, &spawnErr)
}

func TestStartNotExecutable(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "engine.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an engine"), 0o644))
	var _, err = uci.Start(context.Background(), path, uci.DefaultOptions())
	var spawnErr *uci.SpawnError
	require.ErrorAs(t, err, &spawnErr)
}

func TestStartProcessExitsImmediately(t *testing.T) {
	var _, err = startStub(t, stub.ExitAtStart)
	var spawnErr *uci.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	require.ErrorIs(t, err, uci.ErrProtocolTermination)
}

func TestRequestMove(t *testing.T) {
	var client, err = startStub(t, stub.Normal)
	require.NoError(t, err)
	require.True(t, client.Alive())

	require.NoError(t, client.ResetGame(context.Background()))
	move, err := client.RequestMove(context.Background(), []string{"e2e4", "e7e5"}, uci.Limits{MoveTime: 10})
	require.NoError(t, err)
	require.Regexp(t, `^[a-h][1-8][a-h][1-8][qrbn]?$`, move)
}

func TestResetGameReproducesOpeningMove(t *testing.T) {
	var client, err = startStub(t, stub.Normal)
	require.NoError(t, err)
	require.NoError(t, client.SetOption("Skill Level", "3"))

	var ctx = context.Background()
	require.NoError(t, client.ResetGame(ctx))
	first, err := client.RequestMove(ctx, nil, uci.Limits{Depth: 1})
	require.NoError(t, err)

	require.NoError(t, client.ResetGame(ctx))
	second, err := client.RequestMove(ctx, nil, uci.Limits{Depth: 1})
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestRequestMoveTimeout(t *testing.T) {
	var client, err = startStub(t, stub.Silent)
	require.NoError(t, err)
	require.NoError(t, client.ResetGame(context.Background()))

	_, err = client.RequestMove(context.Background(), nil, uci.Limits{})
	require.ErrorIs(t, err, uci.ErrProtocolTimeout)

	var protocolErr *uci.ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	require.Equal(t, "go", protocolErr.Command)
	require.Equal(t, string(stub.Silent), protocolErr.Engine)
	require.False(t, client.Alive())

	_, err = client.RequestMove(context.Background(), nil, uci.Limits{})
	require.ErrorIs(t, err, uci.ErrProtocolTermination)
}

func TestRequestMoveTermination(t *testing.T) {
	var client, err = startStub(t, stub.ExitOnGo)
	require.NoError(t, err)
	require.NoError(t, client.ResetGame(context.Background()))

	_, err = client.RequestMove(context.Background(), nil, uci.Limits{})
	require.ErrorIs(t, err, uci.ErrProtocolTermination)
	require.False(t, client.Alive())
}

func TestResetGameTimeout(t *testing.T) {
	var client, err = startStub(t, stub.Deaf)
	require.NoError(t, err)

	err = client.ResetGame(context.Background())
	require.ErrorIs(t, err, uci.ErrProtocolTimeout)
	require.NoError(t, client.Close())
}

func TestRequestMoveCanceled(t *testing.T) {
	var client, err = startStub(t, stub.Silent)
	require.NoError(t, err)

	var ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = client.RequestMove(ctx, nil, uci.Limits{})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCloseIsIdempotent(t *testing.T) {
	var client, err = startStub(t, stub.Normal)
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	require.False(t, client.Alive())
}

func TestCloseKillsEngineIgnoringQuit(t *testing.T) {
	var client, err = startStub(t, stub.Stubborn)
	require.NoError(t, err)
	require.NoError(t, client.ResetGame(context.Background()))
	_, err = client.RequestMove(context.Background(), nil, uci.Limits{Depth: 1})
	require.NoError(t, err)

	var done = make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("close did not return after killing the engine")
	}
	require.False(t, client.Alive())
}
