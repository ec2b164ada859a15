package audit_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finops-agent/internal/audit"
)

func TestFileSink_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")
	sink := audit.NewFileSink(path)

	if err := sink.Append(audit.ActionFetchInvoices, map[string]any{"count": 3}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := sink.Append(audit.ActionEmailSent, map[string]any{"invoice_id": "INV-1001", "to": "ap@acme.example"}); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var events []audit.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev audit.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(events))
	}
	if events[0].Action != audit.ActionFetchInvoices {
		t.Errorf("first event action = %s, want %s", events[0].Action, audit.ActionFetchInvoices)
	}
	if events[1].Action != audit.ActionEmailSent {
		t.Errorf("second event action = %s, want %s", events[1].Action, audit.ActionEmailSent)
	}
	for i, ev := range events {
		if ev.ID == "" {
			t.Errorf("event %d has no id", i)
		}
		if _, err := time.Parse(time.RFC3339, ev.Timestamp); err != nil {
			t.Errorf("event %d timestamp %q is not RFC 3339: %v", i, ev.Timestamp, err)
		}
	}
}
