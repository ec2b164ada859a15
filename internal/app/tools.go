package app

import (
	"context"
	"fmt"

	"finops-agent/internal/ai"
	"finops-agent/internal/audit"
	"finops-agent/internal/core"

	"github.com/shopspring/decimal"
)

// Declared tool argument contracts. The structs are reflected into the
// JSON schemas sent to the backend; decoded arguments are validated
// against the same contract before dispatch.

type fetchOverdueInvoicesArgs struct {
	MinimumDaysOverdue int `json:"minimum_days_overdue" jsonschema_description:"Only include invoices at least this many days overdue"`
	Limit              int `json:"limit" jsonschema_description:"Maximum number of invoices to return, most overdue first"`
}

type assessInvoiceRiskArgs struct {
	Invoices []riskInvoiceArg `json:"invoices" jsonschema_description:"Invoices to classify, as returned by fetch_overdue_invoices"`
}

type riskInvoiceArg struct {
	InvoiceID   string  `json:"invoice_id"`
	CustomerID  string  `json:"customer_id"`
	Customer    string  `json:"customer,omitempty" jsonschema_description:"Customer display name, if known"`
	DaysOverdue int     `json:"days_overdue"`
	Amount      float64 `json:"amount"`
}

var (
	fetchOverdueInvoicesSchema = ai.InputSchema(fetchOverdueInvoicesArgs{})
	assessInvoiceRiskSchema    = ai.InputSchema(assessInvoiceRiskArgs{})
)

// toolRegistry declares the two read tools for one fallback turn. The
// handlers close over the controller so they can read and mutate the
// session; neither tool performs an irreversible side effect.
func (c *Controller) toolRegistry() *ai.ToolRegistry {
	reg := ai.NewToolRegistry()
	reg.Register(ai.ToolDefinition{
		Name:        "fetch_overdue_invoices",
		Description: "Fetch overdue invoices from the receivables ledger, most overdue first",
		InputSchema: fetchOverdueInvoicesSchema,
		Handler:     c.handleFetchOverdueInvoicesTool,
	})
	reg.Register(ai.ToolDefinition{
		Name:        "assess_invoice_risk",
		Description: "Analyze the risk level of overdue invoices",
		InputSchema: assessInvoiceRiskSchema,
		Handler:     c.handleAssessInvoiceRiskTool,
	})
	return reg
}

func (c *Controller) handleFetchOverdueInvoicesTool(ctx context.Context, params map[string]any) (string, error) {
	minimumDays, err := intArg(params, "minimum_days_overdue")
	if err != nil {
		return "", err
	}
	limit, err := intArg(params, "limit")
	if err != nil {
		return "", err
	}

	invoices, err := c.ListOverdue(ctx, minimumDays, limit)
	if err != nil {
		return "", err
	}
	return ai.MarshalSafe(invoices)
}

func (c *Controller) handleAssessInvoiceRiskTool(ctx context.Context, params map[string]any) (string, error) {
	invoices, err := decodeRiskInvoices(params)
	if err != nil {
		return "", err
	}

	results, err := core.AssessInvoices(invoices)
	if err != nil {
		return "", err
	}

	c.session.LastRiskAnalysis = results
	c.auditLog(audit.ActionAnalyzeRisk, results)
	return ai.MarshalSafe(results)
}

// ── argument validation ───────────────────────────────────────────────────────

// intArg extracts a required integer argument. JSON numbers decode as
// float64; anything else is a contract violation.
func intArg(params map[string]any, key string) (int, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer, got %T", key, raw)
	}
	return int(f), nil
}

func stringField(item map[string]any, index int, key string, required bool) (string, error) {
	raw, ok := item[key]
	if !ok {
		if required {
			return "", fmt.Errorf("invoices[%d]: missing required field %q", index, key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invoices[%d]: field %q must be a string, got %T", index, key, raw)
	}
	return s, nil
}

func numberField(item map[string]any, index int, key string) (float64, error) {
	raw, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("invoices[%d]: missing required field %q", index, key)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invoices[%d]: field %q must be a number, got %T", index, key, raw)
	}
	return f, nil
}

// decodeRiskInvoices validates assess_invoice_risk arguments against the
// declared contract and converts them to domain invoices. A missing
// required field is rejected here, before any classification runs.
func decodeRiskInvoices(params map[string]any) ([]core.Invoice, error) {
	rawList, ok := params["invoices"].([]any)
	if !ok {
		return nil, fmt.Errorf("missing or invalid required argument %q", "invoices")
	}

	invoices := make([]core.Invoice, 0, len(rawList))
	for i, raw := range rawList {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invoices[%d]: expected an object, got %T", i, raw)
		}

		invoiceID, err := stringField(item, i, "invoice_id", true)
		if err != nil {
			return nil, err
		}
		customerID, err := stringField(item, i, "customer_id", true)
		if err != nil {
			return nil, err
		}
		customer, err := stringField(item, i, "customer", false)
		if err != nil {
			return nil, err
		}
		daysOverdue, err := numberField(item, i, "days_overdue")
		if err != nil {
			return nil, err
		}
		amount, err := numberField(item, i, "amount")
		if err != nil {
			return nil, err
		}

		invoices = append(invoices, core.Invoice{
			InvoiceID:   invoiceID,
			CustomerID:  customerID,
			Customer:    customer,
			DaysOverdue: int(daysOverdue),
			TotalAmount: decimal.NewFromFloat(amount),
		})
	}
	return invoices, nil
}
