package infrastructure

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// commandRunner runs an external notifier
type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// NotificationService sends desktop notifications for asset lifecycle events
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    commandRunner
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run:    runCommand,
	}
}

// Send sends a notification
func (n *NotificationService) Send(ctx context.Context, title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var args []string
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
		args = []string{"-e", script}
	case "notify-send":
		args = []string{title, message}
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err := n.run(ctx, n.config.Method, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("command", commandLine(n.config.Method, args...)),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// OnStored notifies that an asset was downloaded
func (n *NotificationService) OnStored(ctx context.Context, event domain.AssetEvent) error {
	return n.Send(ctx, "Asset Downloaded", describeEvent(event))
}

// OnRemoved notifies that an asset was deleted or unpublished
func (n *NotificationService) OnRemoved(ctx context.Context, event domain.AssetEvent) error {
	title := "Asset Unpublished"
	if event.Type == domain.EventDeleted {
		title = "Asset Deleted"
	}
	return n.Send(ctx, title, describeEvent(event))
}

func describeEvent(event domain.AssetEvent) string {
	name := event.Asset.Filename
	if name == "" {
		name = event.Asset.UID
	}
	return fmt.Sprintf("%s (%s)", truncateString(name, 30), event.Asset.Locale)
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// commandLine renders a command for logs, single-quoting arguments the shell would interpret
func commandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"$`\\!*?[](){}|;<>&~#%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
