package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"finops-agent/internal/app"
	"finops-agent/internal/core"
)

// Run starts the interactive REPL loop.
// It reads input from reader, dispatches slash commands deterministically,
// and routes everything else through the dialogue controller — including
// the yes/no approval turns for pending email sends.
func Run(ctx context.Context, svc app.DialogueService, reader *bufio.Reader) {
	fmt.Println("Finance Operations Agent")
	fmt.Println("Ask about overdue invoices, risk, or follow-up emails. Use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "invoices", "inv":
			minimumDays := 0
			limit := core.DefaultFetchLimit
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					fmt.Printf("Invalid minimum days: %s\n", args[0])
					return nil
				}
				minimumDays = n
			}
			if len(args) > 1 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					fmt.Printf("Invalid limit: %s\n", args[1])
					return nil
				}
				limit = n
			}
			invoices, err := svc.ListOverdue(ctx, minimumDays, limit)
			if err != nil {
				return err
			}
			printInvoices(invoices, minimumDays)

		case "risk":
			results, err := svc.AssessLastBatch(ctx)
			if err != nil {
				return err
			}
			printRisk(results)

		case "pending":
			pending, ok := svc.PendingPreview()
			if !ok {
				fmt.Println("No pending action.")
				return nil
			}
			printPending(pending)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				fmt.Println("Goodbye!")
				break
			}
			continue
		}

		// Bare exit words work without the slash prefix.
		lowered := strings.ToLower(input)
		if lowered == "exit" || lowered == "quit" {
			fmt.Println("Goodbye!")
			break
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if dispErr := dispatchSlash(input); dispErr != nil {
				if dispErr == errExit {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Printf("Error: %v\n", dispErr)
			}
			continue
		}

		// Everything else goes through the dialogue controller. Approval
		// prompts come back as part of the response text; the next "yes"
		// or "no" turn resolves them.
		fmt.Println(svc.HandleTurn(ctx, input))
	}
}
