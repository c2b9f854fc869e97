// Package notification implements the send_notification action: it renders
// the configured template against the trigger payload and dispatches the
// message through the notification sink.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ninjagenz/automata/pkg/interpolate"
	"github.com/ninjagenz/automata/pkg/models"
	"github.com/ninjagenz/automata/pkg/protocol"
)

type ActionFactory struct {
	notifier protocol.Notifier
}

func NewActionFactory(notifier protocol.Notifier) *ActionFactory {
	return &ActionFactory{notifier: notifier}
}

func (*ActionFactory) ID() string {
	return string(models.ActionSendNotification)
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	step := models.ActionStep{Type: models.ActionSendNotification, Config: config}

	cfg, err := step.DecodeNotificationConfig()
	if err != nil {
		return nil, err
	}

	return &Action{config: cfg, notifier: f.notifier}, nil
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Message template. {{dotted.path}} tokens are resolved against the trigger payload.",
				"examples": []string{
					"Task {{task.title}} was assigned to {{user.name}}",
					"{{workspace.name}}: task {{task.title}} moved to {{task.status}}",
				},
			},
			"recipient": map[string]any{
				"type":        "string",
				"description": "Dotted payload path of the recipient address. Defaults to user.email.",
			},
		},
		"required": []string{"template"},
	}
}

type Action struct {
	config   models.NotificationConfig
	notifier protocol.Notifier
}

func (a *Action) Execute(ctx context.Context, run models.RuleRun, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("action_type", models.ActionSendNotification)

	recipientValue, ok := run.Payload.Lookup(a.config.Recipient)
	if !ok || recipientValue == nil {
		return nil, fmt.Errorf("no recipient at payload path %q", a.config.Recipient)
	}

	recipient, ok := recipientValue.(string)
	if !ok || recipient == "" {
		return nil, fmt.Errorf("recipient at payload path %q is not an address", a.config.Recipient)
	}

	message := interpolate.Render(a.config.Template, run.Payload)

	err := a.notifier.Send(ctx, recipient, message)
	if err != nil {
		return nil, fmt.Errorf("notification dispatch: %w", err)
	}

	logger.InfoContext(ctx, "Notification dispatched", "recipient", recipient)

	return map[string]any{
		"recipient": recipient,
		"message":   message,
	}, nil
}
