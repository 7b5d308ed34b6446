package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

type recordedCommand struct {
	name string
	args []string
}

func newTestNotifier(method string, enabled bool, err error) (*NotificationService, *[]recordedCommand) {
	var calls []recordedCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, nil)
	n.run = func(ctx context.Context, name string, args ...string) error {
		calls = append(calls, recordedCommand{name: name, args: args})
		return err
	}
	return n, &calls
}

func TestNotification_Disabled(t *testing.T) {
	n, calls := newTestNotifier("notify-send", false, nil)

	require.NoError(t, n.Send(context.Background(), "title", "message"))
	assert.Empty(t, *calls)
}

func TestNotification_NotifySend(t *testing.T) {
	n, calls := newTestNotifier("notify-send", true, nil)

	err := n.OnStored(context.Background(), domain.AssetEvent{
		Type:  domain.EventDownloaded,
		Asset: domain.Asset{UID: "u1", Filename: "logo.png", Locale: "en-us"},
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "notify-send", (*calls)[0].name)
	assert.Equal(t, []string{"Asset Downloaded", "logo.png (en-us)"}, (*calls)[0].args)
}

func TestNotification_OSAScriptEscapes(t *testing.T) {
	n, calls := newTestNotifier("osascript", true, nil)

	err := n.OnRemoved(context.Background(), domain.AssetEvent{
		Type:  domain.EventDeleted,
		Asset: domain.Asset{UID: "u1", Filename: `say "hi".png`, Locale: "en-us"},
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "osascript", (*calls)[0].name)
	assert.Contains(t, (*calls)[0].args[1], `say \"hi\".png`)
	assert.Contains(t, (*calls)[0].args[1], `"Asset Deleted"`)
}

func TestNotification_UnknownMethod(t *testing.T) {
	n, calls := newTestNotifier("pigeon", true, nil)

	require.NoError(t, n.Send(context.Background(), "title", "message"))
	assert.Empty(t, *calls)
}

func TestNotification_CommandFailure(t *testing.T) {
	n, _ := newTestNotifier("notify-send", true, errors.New("exit status 1"))

	err := n.OnRemoved(context.Background(), domain.AssetEvent{Type: domain.EventUnpublished, Asset: domain.Asset{UID: "u1"}})
	assert.Error(t, err)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "notify-send plain", commandLine("notify-send", "plain"))
	assert.Equal(t, "notify-send 'Asset Downloaded' ''", commandLine("notify-send", "Asset Downloaded", ""))
	assert.Equal(t, `osascript -e 'it'"'"'s $HOME'`, commandLine("osascript", "-e", "it's $HOME"))
}
