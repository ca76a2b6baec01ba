package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/mail"
)

type fakeSender struct {
	to          []string
	subjects    []string
	bodies      []string
	attachments [][]mail.Attachment
	err         error
}

func (f *fakeSender) Send(to, subject, body string, attachments ...mail.Attachment) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	f.attachments = append(f.attachments, attachments)
	return nil
}

type fakeRenderer struct {
	pdf  []byte
	html string
	err  error
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func TestWelcomeEmailJob(t *testing.T) {
	sender := &fakeSender{}
	job := NewWelcomeEmailJob(sender, nil)

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "rita@example.com", Name: "rita"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, sender.to, 1)
	assert.Equal(t, "rita@example.com", sender.to[0])
	assert.Contains(t, sender.bodies[0], "rita")
}

func TestWelcomeEmailJobSkipsBadPayload(t *testing.T) {
	sender := &fakeSender{}
	job := NewWelcomeEmailJob(sender, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeWelcomeEmail, []byte("{broken")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	missing, err := json.Marshal(WelcomeEmailPayload{Name: "no address"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeWelcomeEmail, missing))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, sender.to)
}

func TestWelcomeEmailJobRetriesOnSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	job := NewWelcomeEmailJob(sender, nil)

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "rita@example.com"})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func receiptPayload() OrderReceiptPayload {
	return OrderReceiptPayload{
		OrderID: 12,
		Email:   "rita@example.com",
		Total:   29.98,
		Items: []ReceiptLine{
			{BookID: 1, Title: "The Quiet Harbour", Quantity: 2, UnitPrice: 14.99, LineTotal: 29.98},
		},
	}
}

func TestOrderReceiptJob(t *testing.T) {
	sender := &fakeSender{}
	renderer := &fakeRenderer{pdf: []byte("%PDF-fake")}
	job := NewOrderReceiptJob(renderer, sender, nil)

	task, err := NewOrderReceiptTask(receiptPayload())
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Contains(t, renderer.html, "The Quiet Harbour")
	require.Len(t, sender.attachments, 1)
	require.Len(t, sender.attachments[0], 1)
	att := sender.attachments[0][0]
	assert.Equal(t, "receipt-12.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, []byte("%PDF-fake"), att.Data)
	assert.True(t, strings.Contains(sender.subjects[0], "#12"))
}

func TestOrderReceiptJobSkipsBadPayload(t *testing.T) {
	job := NewOrderReceiptJob(&fakeRenderer{}, &fakeSender{}, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeOrderReceipt, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	payload := receiptPayload()
	payload.Email = ""
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeOrderReceipt, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOrderReceiptJobRetriesOnRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("gotenberg down")}
	job := NewOrderReceiptJob(renderer, &fakeSender{}, nil)

	task, err := NewOrderReceiptTask(receiptPayload())
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
