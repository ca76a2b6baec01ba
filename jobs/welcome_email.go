package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bookhaven/bookhaven/internal/mail"
)

// WelcomeEmailJob sends the post-registration email.
type WelcomeEmailJob struct {
	sender mail.Sender
	logger *slog.Logger
}

// NewWelcomeEmailJob constructs a job handler.
func NewWelcomeEmailJob(sender mail.Sender, logger *slog.Logger) *WelcomeEmailJob {
	return &WelcomeEmailJob{sender: sender, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *WelcomeEmailJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}
	name := payload.Name
	if name == "" {
		name = "reader"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to BookHaven. Your account is ready; browse the catalog and happy reading.\n\nThe BookHaven team\n",
		name,
	)
	if err := j.sender.Send(payload.To, "Welcome to BookHaven", body); err != nil {
		if j.logger != nil {
			j.logger.Error("welcome email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return err
	}
	return nil
}
