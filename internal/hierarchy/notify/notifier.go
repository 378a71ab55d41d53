package notify

import "context"

// RunMessage summarizes one completed hierarchy run.
type RunMessage struct {
	Table       string         `json:"table"`
	Devices     int            `json:"devices"`
	RowsUpdated int            `json:"rows_updated"`
	Batches     int            `json:"batches"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
}

// Notifier sends run notifications.
type Notifier interface {
	Notify(ctx context.Context, msg RunMessage) error
}
