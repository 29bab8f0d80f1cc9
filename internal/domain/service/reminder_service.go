package service

import "context"

// MessageGateway delivers a text to an external destination identifier. The
// dispatcher treats it purely as a side-effecting sink.
type MessageGateway interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// ReminderService pushes reminders for due habits through the gateway.
type ReminderService interface {
	// DispatchDue processes one batch. Per-habit failures are logged and do
	// not abort the batch; the returned count is the number of successful
	// sends.
	DispatchDue(ctx context.Context) (int, error)
}
