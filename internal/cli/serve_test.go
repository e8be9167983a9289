package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/sortviz/internal/auth"
	"github.com/thruflo/sortviz/internal/config"
	"github.com/thruflo/sortviz/internal/server"
	"github.com/thruflo/sortviz/internal/testutil"
	"github.com/thruflo/sortviz/web"
)

func TestServe_RunsUntilCancelled(t *testing.T) {
	t.Parallel()

	a, err := newApp(testConfig(10), testutil.QuietLogger(), nil)
	require.NoError(t, err)

	srv, err := server.NewServer(&server.Config{
		Host:       "127.0.0.1",
		Port:       0,
		Controller: a.ctrl,
		Mute:       a.mute,
		Assets:     web.Assets(""),
		Logger:     testutil.QuietLogger(),
	})
	require.NoError(t, err)
	a.tones.Add(srv.Hub())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, a, srv, &out) }()

	require.Eventually(t, func() bool { return srv.ListenAddr() != "" }, 2*time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + srv.ListenAddr() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post("http://"+srv.ListenAddr()+"/api/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.False(t, a.ctrl.Info().Status.Active())
}

func fakePrompter(answers ...string) *auth.Prompter {
	return &auth.Prompter{
		ReadPassword: func() ([]byte, error) {
			if len(answers) == 0 {
				return nil, errors.New("no more input")
			}
			next := answers[0]
			answers = answers[1:]
			return []byte(next), nil
		},
		Out: &bytes.Buffer{},
	}
}

// Tests below change package-level flag variables and must not run in
// parallel.

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
}

func TestSetPassword_SavesHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	withConfigPath(t, path)

	cfg := config.DefaultConfig()
	saved, err := setPassword(&cfg, fakePrompter("hunter22", "hunter22"))
	require.NoError(t, err)
	assert.Equal(t, path, saved)

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	ok, err := auth.VerifyPassword("hunter22", loaded.Server.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetPassword_Mismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	withConfigPath(t, path)

	cfg := config.DefaultConfig()
	_, err := setPassword(&cfg, fakePrompter("one", "two"))
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
	assert.Empty(t, cfg.Server.PasswordHash)
}
