package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/driveagent/internal/config"
	"github.com/teemow/driveagent/internal/confirm"
	"github.com/teemow/driveagent/internal/drive"
	"github.com/teemow/driveagent/internal/google"
)

type fakeTokens struct {
	calls   []string
	err     error
	missing bool
}

func (f *fakeTokens) HTTPClientForAccount(_ context.Context, account string) (*http.Client, error) {
	f.calls = append(f.calls, account)
	if f.err != nil {
		return nil, f.err
	}
	return &http.Client{}, nil
}

func (f *fakeTokens) HasTokenForAccount(string) bool {
	return !f.missing
}

func testConfig() *config.Config {
	return &config.Config{
		Model:               config.DefaultModel,
		AgentName:           config.DefaultAgentName,
		ToolLimit:           config.DefaultToolLimit,
		InlineDownloadLimit: config.DefaultInlineDownloadLimit,
		UploadLimit:         config.DefaultUploadLimit,
	}
}

func newTestContext(t *testing.T, tokens HTTPClientProvider) *ServerContext {
	t.Helper()
	cfg := testConfig()
	gate := confirm.NewGate(confirm.NewPolicy(config.DefaultGatedTools...), confirm.DenyApprover{})
	sc, err := NewServerContext(context.Background(), cfg, gate,
		WithTokenProvider(tokens),
		WithDriveOptions(drive.Options{Endpoint: "http://127.0.0.1:1/"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_Validation(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil, confirm.NewGate(nil, nil))
	assert.Error(t, err)

	_, err = NewServerContext(context.Background(), testConfig(), nil)
	assert.Error(t, err)
}

func TestNewServerContext_DefaultTokenProvider(t *testing.T) {
	cfg := testConfig()
	cfg.TokenFile = t.TempDir() + "/token.json"
	sc, err := NewServerContext(context.Background(), cfg, confirm.NewGate(cfg.Policy(), nil))
	require.NoError(t, err)

	_, err = sc.DriveClientForAccount("")
	assert.ErrorIs(t, err, google.ErrNoToken)
}

func TestDriveClientForAccount_Caches(t *testing.T) {
	tokens := &fakeTokens{}
	sc := newTestContext(t, tokens)

	first, err := sc.DriveClientForAccount("")
	require.NoError(t, err)
	assert.Equal(t, google.DefaultAccount, first.Account())

	again, err := sc.DriveClientForAccount(google.DefaultAccount)
	require.NoError(t, err)
	assert.Same(t, first, again)

	work, err := sc.DriveClientForAccount("work")
	require.NoError(t, err)
	assert.NotSame(t, first, work)
	assert.Equal(t, "work", work.Account())

	assert.Equal(t, []string{google.DefaultAccount, "work"}, tokens.calls)
	assert.Equal(t, config.DefaultInlineDownloadLimit, work.InlineDownloadLimit())
}

func TestDriveClientForAccount_TokenError(t *testing.T) {
	sc := newTestContext(t, &fakeTokens{err: google.ErrNoToken})

	_, err := sc.DriveClientForAccount("work")
	assert.ErrorIs(t, err, google.ErrNoToken)
	assert.ErrorContains(t, err, `account "work"`)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestContext(t, &fakeTokens{})

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.True(t, errors.Is(sc.Context().Err(), context.Canceled))

	_, err := sc.DriveClientForAccount("")
	assert.ErrorContains(t, err, "shutting down")
}

func TestServerContext_SetDriveClient(t *testing.T) {
	tokens := &fakeTokens{}
	sc := newTestContext(t, tokens)

	client, err := drive.NewClient(context.Background(), drive.Options{HTTPClient: &http.Client{}, Endpoint: "http://127.0.0.1:1/"})
	require.NoError(t, err)
	sc.SetDriveClientForAccount("injected", client)

	got, err := sc.DriveClientForAccount("injected")
	require.NoError(t, err)
	assert.Same(t, client, got)
	assert.Empty(t, tokens.calls)
}

func TestServerContext_ConfigIsACopy(t *testing.T) {
	cfg := testConfig()
	gate := confirm.NewGate(cfg.Policy(), confirm.DenyApprover{})
	sc, err := NewServerContext(context.Background(), cfg, gate, WithTokenProvider(&fakeTokens{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	cfg.Model = "changed-after-start"
	got := sc.Config()
	got.UploadLimit = 1

	assert.Equal(t, config.DefaultModel, sc.Config().Model)
	assert.Equal(t, config.DefaultUploadLimit, sc.Config().UploadLimit)
}
