package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"finops-agent/internal/ai"
	"finops-agent/internal/audit"
	"finops-agent/internal/core"
)

// Intent keywords and demonstrative phrases for the heuristic router.
// These are deliberately a fixed, testable predicate table — ambiguity is
// resolved by asking the user, not by guessing.
var (
	emailIntentKeywords = []string{"draft", "email", "send", "notify", "remind"}

	contextPhrases = []string{
		"the invoices you just",
		"the invoices you gave me",
		"these invoices",
		"those invoices",
		"all of these invoices",
		"all the invoices you gave me",
	}

	invoiceIDPattern = regexp.MustCompile(`INV-\d+`)
)

const (
	msgSafeLimit      = "Unable to complete the request within safe execution limits."
	msgGenericFailure = "Sorry, I couldn't complete that request. Please try again or rephrase."
)

// Options carries controller configuration that isn't a collaborator.
type Options struct {
	// FallbackRecipient receives reminders for invoices whose customer
	// has no directory email. Empty means such sends fail per invoice.
	FallbackRecipient string
}

// Controller is the dialogue/session controller. Each user turn is matched
// against an ordered route table — first match wins — and either handled
// deterministically against the session or handed to the bounded reasoning
// loop. Sending email happens in exactly one place: the approve route.
type Controller struct {
	session   *Session
	store     InvoiceStore
	directory CustomerDirectory
	transport EmailTransport
	audit     AuditSink
	reasoner  Reasoner
	opts      Options
	routes    []route
}

// route pairs a guard predicate with its handler. Guards are evaluated in
// declaration order; the tie-break is always first-match-wins.
type route struct {
	name   string
	match  func(turn *turnInput) bool
	handle func(ctx context.Context, turn *turnInput) string
}

// turnInput is one utterance plus the derived features the guards test.
type turnInput struct {
	raw        string
	normalized string   // trimmed, lowercased
	invoiceIDs []string // INV-<digits> matches, uppercased, deduplicated
	wantsEmail bool
}

func NewController(store InvoiceStore, directory CustomerDirectory, transport EmailTransport, sink AuditSink, reasoner Reasoner, opts Options) *Controller {
	c := &Controller{
		session:   NewSession(),
		store:     store,
		directory: directory,
		transport: transport,
		audit:     sink,
		reasoner:  reasoner,
		opts:      opts,
	}

	// Ordered guard list. The draft-by-id route outranks the approval
	// gate: a fresh email request supersedes a stale pending action.
	// ask-for-ids must stay below the phrase routes — it matches any
	// email-intent utterance once a batch exists.
	c.routes = []route{
		{"draft-by-id", c.matchDraftByID, c.handleDraftByID},
		{"approve", c.matchApprove, c.handleApprove},
		{"reject", c.matchReject, c.handleReject},
		{"context-reference", c.matchContextReference, c.handleContextReference},
		{"select-all", c.matchSelectAll, c.handleSelectAll},
		{"ask-for-ids", c.matchAskForIDs, c.handleAskForIDs},
		{"reasoning-loop", func(*turnInput) bool { return true }, c.handleReasoning},
	}
	return c
}

// Session exposes the per-conversation state, primarily for adapters and tests.
func (c *Controller) Session() *Session {
	return c.session
}

// HandleTurn routes one utterance. See DialogueService.
func (c *Controller) HandleTurn(ctx context.Context, input string) string {
	turn := newTurnInput(input)
	for _, r := range c.routes {
		if r.match(turn) {
			return r.handle(ctx, turn)
		}
	}
	// The reasoning-loop route always matches.
	return msgGenericFailure
}

func newTurnInput(input string) *turnInput {
	normalized := strings.ToLower(strings.TrimSpace(input))

	wantsEmail := false
	for _, kw := range emailIntentKeywords {
		if strings.Contains(normalized, kw) {
			wantsEmail = true
			break
		}
	}

	seen := make(map[string]bool)
	var ids []string
	for _, id := range invoiceIDPattern.FindAllString(strings.ToUpper(input), -1) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return &turnInput{raw: input, normalized: normalized, invoiceIDs: ids, wantsEmail: wantsEmail}
}

// ── guards ────────────────────────────────────────────────────────────────────

func (c *Controller) matchDraftByID(turn *turnInput) bool {
	return turn.wantsEmail && len(c.session.LastInvoices) > 0 && len(turn.invoiceIDs) > 0
}

func (c *Controller) matchApprove(turn *turnInput) bool {
	return (turn.normalized == "yes" || turn.normalized == "y") && c.session.HasPending(ActionSendEmail)
}

func (c *Controller) matchReject(turn *turnInput) bool {
	return (turn.normalized == "no" || turn.normalized == "n") && !c.session.HasPending(ActionNone)
}

func (c *Controller) matchContextReference(turn *turnInput) bool {
	if !turn.wantsEmail {
		return false
	}
	for _, phrase := range contextPhrases {
		if strings.Contains(turn.normalized, phrase) {
			return true
		}
	}
	return false
}

func (c *Controller) matchSelectAll(turn *turnInput) bool {
	return turn.wantsEmail && strings.Contains(turn.normalized, "all of them") && len(c.session.LastInvoices) > 0
}

func (c *Controller) matchAskForIDs(turn *turnInput) bool {
	return turn.wantsEmail && len(c.session.LastInvoices) > 0
}

// ── handlers ──────────────────────────────────────────────────────────────────

func (c *Controller) handleDraftByID(ctx context.Context, turn *turnInput) string {
	wanted := make(map[string]bool, len(turn.invoiceIDs))
	for _, id := range turn.invoiceIDs {
		wanted[id] = true
	}

	var selected []core.Invoice
	for _, inv := range c.session.LastInvoices {
		if wanted[inv.InvoiceID] {
			selected = append(selected, inv)
		}
	}

	if len(selected) == 0 {
		// Selection miss: clarify, touch nothing.
		return "I couldn't find those invoice IDs in the current list. Please request overdue invoices again."
	}
	return c.armEmailSend(selected)
}

func (c *Controller) handleApprove(ctx context.Context, turn *turnInput) string {
	payload := c.session.Pending().Payload
	if len(payload) == 0 {
		c.session.ClearPending()
		return "Nothing to send."
	}

	var lines []string
	var failed []PendingEmail
	for _, item := range payload {
		id := item.Invoice.InvoiceID
		to := c.recipientFor(item.Invoice)
		if to == "" {
			c.auditLog(audit.ActionEmailSendFailed, map[string]any{"invoice_id": id, "reason": "no recipient on file"})
			failed = append(failed, item)
			lines = append(lines, fmt.Sprintf("Could not send for invoice %s: no recipient email on file.", id))
			continue
		}

		if err := c.transport.Send(ctx, to, item.Draft.Subject, item.Draft.Body); err != nil {
			log.Printf("email send failed for invoice %s: %v", id, err)
			c.auditLog(audit.ActionEmailSendFailed, map[string]any{"invoice_id": id, "to": to, "reason": err.Error()})
			failed = append(failed, item)
			lines = append(lines, fmt.Sprintf("Could not send for invoice %s: delivery failed.", id))
			continue
		}

		c.auditLog(audit.ActionEmailSent, map[string]any{"invoice_id": id, "to": to})
		lines = append(lines, fmt.Sprintf("Email sent for invoice %s.", id))
	}

	// Failed entries stay armed so the user can retry with another "yes"
	// or cancel with "no". A clean run clears the gate entirely.
	if len(failed) > 0 {
		c.session.Arm(failed)
		lines = append(lines, "Reply yes to retry the failed sends, or no to cancel them.")
	} else {
		c.session.ClearPending()
	}
	return strings.Join(lines, "\n")
}

func (c *Controller) handleReject(ctx context.Context, turn *turnInput) string {
	for _, item := range c.session.Pending().Payload {
		c.auditLog(audit.ActionEmailSendRejected, map[string]any{"invoice_id": item.Invoice.InvoiceID})
	}
	c.session.ClearPending()
	return "Action cancelled. No emails were sent."
}

func (c *Controller) handleContextReference(ctx context.Context, turn *turnInput) string {
	if len(c.session.LastInvoices) == 0 {
		return "I don't have any invoices from this session yet. Please list overdue invoices first."
	}

	ids := make([]string, 0, len(c.session.LastInvoices))
	for _, inv := range c.session.LastInvoices {
		ids = append(ids, inv.InvoiceID)
	}
	return "Which invoice IDs should I email about?\n\nAvailable in this session:\n- " + strings.Join(ids, "\n- ")
}

func (c *Controller) handleSelectAll(ctx context.Context, turn *turnInput) string {
	return c.armEmailSend(c.session.LastInvoices)
}

func (c *Controller) handleAskForIDs(ctx context.Context, turn *turnInput) string {
	return "Please specify which invoice(s) you want to draft the email for."
}

func (c *Controller) handleReasoning(ctx context.Context, turn *turnInput) string {
	answer, err := c.reasoner.Run(ctx, turn.raw, c.toolRegistry())
	if err != nil {
		if errors.Is(err, ai.ErrStepBudgetExceeded) {
			return msgSafeLimit
		}
		log.Printf("reasoning turn failed: %v", err)
		return msgGenericFailure
	}
	return answer
}

// ── arm/preview and shared helpers ────────────────────────────────────────────

// armEmailSend builds drafts for the selected invoices, arms the pending
// send, and returns the preview plus the approval prompt. This is the only
// way a SEND_EMAIL action gets armed.
func (c *Controller) armEmailSend(selected []core.Invoice) string {
	payload := make([]PendingEmail, 0, len(selected))
	var preview strings.Builder

	for _, inv := range selected {
		draft := core.DraftFollowupEmail(inv)
		payload = append(payload, PendingEmail{Invoice: inv, Draft: draft})

		to := c.recipientFor(inv)
		if to == "" {
			to = "(no recipient on file)"
		}
		fmt.Fprintf(&preview, "---\nInvoice: %s\nTo: %s\nSubject: %s\nBody:\n%s\n",
			inv.InvoiceID, to, draft.Subject, draft.Body)
	}

	c.session.Arm(payload)

	noun := "this email"
	if len(payload) > 1 {
		noun = "these emails"
	}
	return fmt.Sprintf("Follow-up Email Preview\n\n%s\nDo you approve sending %s? (yes/no)", preview.String(), noun)
}

func (c *Controller) recipientFor(inv core.Invoice) string {
	if inv.CustomerEmail != nil && *inv.CustomerEmail != "" {
		return *inv.CustomerEmail
	}
	return c.opts.FallbackRecipient
}

// auditLog appends best-effort: a broken sink must never block the
// user-facing response.
func (c *Controller) auditLog(action audit.Action, payload any) {
	if err := c.audit.Append(action, payload); err != nil {
		log.Printf("audit append failed for %s: %v", action, err)
	}
}

// ── deterministic service operations ──────────────────────────────────────────

// ListOverdue fetches, enriches, remembers and audits a batch without
// involving the reasoning backend. Shared with the fetch tool handler.
func (c *Controller) ListOverdue(ctx context.Context, minimumDaysOverdue, limit int) ([]core.Invoice, error) {
	invoices, err := c.store.FetchOverdue(ctx, minimumDaysOverdue, limit)
	if err != nil {
		return nil, err
	}

	for i := range invoices {
		email, found, err := c.directory.EmailFor(ctx, invoices[i].CustomerID)
		if err != nil {
			return nil, fmt.Errorf("directory lookup failed for %s: %w", invoices[i].CustomerID, err)
		}
		if found {
			invoices[i].CustomerEmail = &email
		}
	}

	c.session.LastInvoices = invoices
	c.auditLog(audit.ActionFetchInvoices, map[string]any{"count": len(invoices)})
	return invoices, nil
}

// AssessLastBatch classifies the current batch and remembers the result.
func (c *Controller) AssessLastBatch(ctx context.Context) ([]core.RiskAssessment, error) {
	if len(c.session.LastInvoices) == 0 {
		return nil, fmt.Errorf("no invoices fetched in this session yet")
	}

	results, err := core.AssessInvoices(c.session.LastInvoices)
	if err != nil {
		return nil, err
	}

	c.session.LastRiskAnalysis = results
	c.auditLog(audit.ActionAnalyzeRisk, results)
	return results, nil
}

// PendingPreview returns the armed action, if any.
func (c *Controller) PendingPreview() (PendingAction, bool) {
	pending := c.session.Pending()
	return pending, pending.Kind != ActionNone
}
