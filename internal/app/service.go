package app

import (
	"context"

	"finops-agent/internal/ai"
	"finops-agent/internal/audit"
	"finops-agent/internal/core"
)

// DialogueService is the single interface all UI adapters (REPL, CLI) call.
// It decouples presentation from session logic. Implementations must
// contain no fmt.Println and no display logic of any kind.
type DialogueService interface {
	// HandleTurn routes one user utterance through the dialogue router and
	// returns the response to display. Session transitions happen as a
	// side effect. Recoverable failures come back as plain user-facing
	// text; HandleTurn never returns internal error detail.
	HandleTurn(ctx context.Context, input string) string

	// ListOverdue fetches overdue invoices deterministically (no AI),
	// through the same enrich/remember/audit pipeline as the fetch tool.
	ListOverdue(ctx context.Context, minimumDaysOverdue, limit int) ([]core.Invoice, error)

	// AssessLastBatch classifies the invoices fetched earlier in this
	// session and remembers the result.
	AssessLastBatch(ctx context.Context) ([]core.RiskAssessment, error)

	// PendingPreview returns the armed action, if any.
	PendingPreview() (PendingAction, bool)
}

// InvoiceStore queries overdue invoices by threshold and limit, sorted
// descending by days overdue.
type InvoiceStore interface {
	FetchOverdue(ctx context.Context, minimumDaysOverdue, limit int) ([]core.Invoice, error)
}

// CustomerDirectory resolves a customer id to an email address.
// found=false is a lookup miss, not an error.
type CustomerDirectory interface {
	EmailFor(ctx context.Context, customerID string) (email string, found bool, err error)
}

// EmailTransport delivers one composed message.
type EmailTransport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AuditSink records structured action events. Appends are best-effort
// from the controller's point of view.
type AuditSink interface {
	Append(action audit.Action, payload any) error
}

// Reasoner runs the bounded tool-calling loop for one fallback turn.
type Reasoner interface {
	Run(ctx context.Context, userInput string, registry *ai.ToolRegistry) (string, error)
}
