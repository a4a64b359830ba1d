package sheets

import (
	"context"
	"sync"

	"github.com/yanizio/propertysite/internal/lead"
)

// Memory is an in-process Recorder.  Rows are kept in append order.  It
// backs local development (no spreadsheet configured and
// PROPERTYSITE_SHEETS__MEMORY=true) and tests.
type Memory struct {
	mu   sync.Mutex
	rows []lead.Row

	// ReadyErr and AppendErr, when set, are returned by Ready and Append.
	ReadyErr  error
	AppendErr error
}

var _ Recorder = (*Memory)(nil)

func (m *Memory) Ready() error { return m.ReadyErr }

func (m *Memory) Append(ctx context.Context, row lead.Row) error {
	if err := ctx.Err(); err != nil {
		return &lead.UpstreamError{Op: "append", Err: err}
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, append(lead.Row(nil), row...))
	return nil
}

// Rows returns a copy of every appended row.
func (m *Memory) Rows() []lead.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]lead.Row, len(m.rows))
	copy(out, m.rows)
	return out
}
