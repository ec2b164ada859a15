// Package audit provides the append-only action log.
// Every externally visible action the agent takes (fetching data, risk
// analysis, sending or refusing to send email) is recorded as one JSON
// line so a reviewer can reconstruct the session afterwards.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of event being recorded.
type Action string

const (
	ActionFetchInvoices     Action = "FETCH_INVOICES"
	ActionAnalyzeRisk       Action = "ANALYZE_RISK"
	ActionEmailSent         Action = "EMAIL_SENT"
	ActionEmailSendRejected Action = "EMAIL_SEND_REJECTED"
	ActionEmailSendFailed   Action = "EMAIL_SEND_FAILED"
)

// Event is a single audit record.
type Event struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // UTC, RFC 3339
	Action    Action `json:"action"`
	Payload   any    `json:"payload"`
}

// Sink accepts audit events. Implementations must be append-only; no read
// path is required.
type Sink interface {
	Append(action Action, payload any) error
}

// FileSink appends one JSON line per event to a log file, creating the
// file and its directory on first use.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Append(action Action, payload any) error {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
		Payload:   payload,
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
