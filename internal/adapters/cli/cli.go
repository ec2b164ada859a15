package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"finops-agent/internal/app"
	"finops-agent/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
// One-shot mode cannot answer approval prompts, so "ask" never ends in a
// send: an armed action is reported and discarded with the process.
func Run(ctx context.Context, svc app.DialogueService, args []string) {
	switch args[0] {
	case "ask", "a":
		if len(args) < 2 {
			log.Fatal("Usage: app ask \"<request>\"")
		}
		fmt.Println(svc.HandleTurn(ctx, args[1]))
		if pending, ok := svc.PendingPreview(); ok {
			fmt.Fprintf(os.Stderr, "Note: %d email(s) were drafted but NOT sent. Approval requires an interactive session.\n",
				len(pending.Payload))
			os.Exit(1)
		}

	case "invoices", "inv":
		minimumDays := 0
		limit := core.DefaultFetchLimit
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				log.Fatalf("Invalid minimum days: %s", args[1])
			}
			minimumDays = n
		}
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n <= 0 {
				log.Fatalf("Invalid limit: %s", args[2])
			}
			limit = n
		}
		invoices, err := svc.ListOverdue(ctx, minimumDays, limit)
		if err != nil {
			log.Fatalf("Failed to fetch invoices: %v", err)
		}
		writeJSON(invoices)

	case "risk":
		if len(args) > 1 {
			// Fetch first so risk has a batch to classify.
			if _, err := svc.ListOverdue(ctx, atoiOrDie(args[1]), core.DefaultFetchLimit); err != nil {
				log.Fatalf("Failed to fetch invoices: %v", err)
			}
		} else if _, err := svc.ListOverdue(ctx, 0, core.DefaultFetchLimit); err != nil {
			log.Fatalf("Failed to fetch invoices: %v", err)
		}
		results, err := svc.AssessLastBatch(ctx)
		if err != nil {
			log.Fatalf("Risk assessment failed: %v", err)
		}
		writeJSON(results)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: ask, invoices, risk", args[0])
	}
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func atoiOrDie(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		log.Fatalf("Invalid minimum days: %s", s)
	}
	return n
}
