package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bookhaven/bookhaven/internal/mail"
	"github.com/bookhaven/bookhaven/report"
)

// PDFRenderer converts HTML into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// OrderReceiptJob renders a PDF receipt and emails it to the buyer.
type OrderReceiptJob struct {
	renderer PDFRenderer
	sender   mail.Sender
	logger   *slog.Logger
}

// NewOrderReceiptJob constructs a job handler.
func NewOrderReceiptJob(renderer PDFRenderer, sender mail.Sender, logger *slog.Logger) *OrderReceiptJob {
	return &OrderReceiptJob{renderer: renderer, sender: sender, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *OrderReceiptJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload OrderReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OrderID == 0 || payload.Email == "" {
		return asynq.SkipRetry
	}

	receipt := report.Receipt{
		OrderID:       payload.OrderID,
		CustomerEmail: payload.Email,
		Total:         payload.Total,
		IssuedAt:      time.Now().UTC(),
	}
	for _, item := range payload.Items {
		receipt.Lines = append(receipt.Lines, report.ReceiptLine{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}

	html, err := report.ReceiptHTML(receipt)
	if err != nil {
		return asynq.SkipRetry
	}
	pdf, err := j.renderer.RenderHTML(ctx, html)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("render receipt", slog.Int64("order_id", payload.OrderID), slog.Any("error", err))
		}
		return err
	}

	subject := fmt.Sprintf("Your BookHaven receipt for order #%d", payload.OrderID)
	body := fmt.Sprintf("Thanks for your purchase. The receipt for order #%d is attached.\n", payload.OrderID)
	attachment := mail.Attachment{
		Filename:    fmt.Sprintf("receipt-%d.pdf", payload.OrderID),
		ContentType: "application/pdf",
		Data:        pdf,
	}
	if err := j.sender.Send(payload.Email, subject, body, attachment); err != nil {
		if j.logger != nil {
			j.logger.Error("send receipt", slog.Int64("order_id", payload.OrderID), slog.Any("error", err))
		}
		return err
	}
	return nil
}
