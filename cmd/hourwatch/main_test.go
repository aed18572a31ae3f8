package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/hourwatch/internal/config"
	"github.com/joshsymonds/hourwatch/internal/fetch"
	"github.com/joshsymonds/hourwatch/internal/gmail"
)

type stubClient struct {
	lists int
}

func (s *stubClient) List(ctx context.Context, q gmail.Query, maxResults int) ([]gmail.MessageID, error) {
	_ = ctx
	_ = q
	_ = maxResults
	s.lists++
	return []gmail.MessageID{"m1"}, nil
}

func (s *stubClient) Get(ctx context.Context, id gmail.MessageID) (gmail.Message, error) {
	_ = ctx
	return gmail.Message{
		ID: id,
		Payload: gmail.Part{
			Headers: []gmail.Header{{Name: "Subject", Value: "Hi"}},
			Data:    "SGVsbG8",
		},
	}, nil
}

func testApp(format string) (*app, *stubClient) {
	client := &stubClient{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &app{
		cfg:     config.Config{Format: format, MaxResults: 20, Interval: time.Millisecond},
		logger:  logger,
		service: fetch.NewService(client, nil, logger),
	}, client
}

func TestPollText(t *testing.T) {
	a, _ := testApp(config.FormatText)
	var out bytes.Buffer

	require.NoError(t, a.poll(context.Background(), &out))
	assert.Contains(t, out.String(), "1 unread in the last hour (1 processed total)")
	assert.Contains(t, out.String(), "subject: Hi")
	assert.Contains(t, out.String(), "body:    Hello")
}

func TestPollJSON(t *testing.T) {
	a, _ := testApp(config.FormatJSON)
	var out bytes.Buffer

	require.NoError(t, a.poll(context.Background(), &out))
	assert.Contains(t, out.String(), `"from": "N/A"`)
	assert.Contains(t, out.String(), `"body": "Hello"`)
}

func TestWatchStopsOnCancel(t *testing.T) {
	a, client := testApp(config.FormatText)
	ctx, cancel := context.WithCancel(context.Background())

	ticks := 0
	err := a.watch(ctx, time.Millisecond, func(ctx context.Context) error {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return a.poll(ctx, io.Discard)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 3, client.lists)
	assert.Equal(t, 3, a.service.Processed())
}

func TestWatchPropagatesTickError(t *testing.T) {
	a, _ := testApp(config.FormatText)
	boom := errors.New("render failed")

	err := a.watch(context.Background(), time.Millisecond, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFetchRequiresCredentials(t *testing.T) {
	t.Setenv("HOURWATCH_CREDENTIALS_FILE", "")
	root := newRootCmd()
	root.SetArgs([]string{"fetch"})
	root.SetOut(io.Discard)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials_file is required")
}

func TestFetchRejectsMalformedKey(t *testing.T) {
	key := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(key, []byte(`{"type":"nope"}`), 0o600))

	root := newRootCmd()
	root.SetArgs([]string{"fetch", "--credentials-file", key})
	root.SetOut(io.Discard)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticate service account")
}
