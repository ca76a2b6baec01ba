package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail is the task type for the post-registration email.
	TaskTypeWelcomeEmail = "mail:welcome"
	// TaskTypeOrderReceipt is the task type for receipt generation and delivery.
	TaskTypeOrderReceipt = "order:receipt"
)

// WelcomeEmailPayload describes the post-registration email.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// ReceiptLine is one purchased item on a receipt.
type ReceiptLine struct {
	BookID    int64   `json:"book_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// OrderReceiptPayload describes a receipt to render and email.
type OrderReceiptPayload struct {
	OrderID int64         `json:"order_id"`
	Email   string        `json:"email"`
	Items   []ReceiptLine `json:"items"`
	Total   float64       `json:"total"`
}

// NewWelcomeEmailTask constructs an asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data), nil
}

// NewOrderReceiptTask constructs an asynq task.
func NewOrderReceiptTask(payload OrderReceiptPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOrderReceipt, data), nil
}
