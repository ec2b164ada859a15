package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"finops-agent/internal/adapters/cli"
	"finops-agent/internal/adapters/repl"
	"finops-agent/internal/ai"
	"finops-agent/internal/app"
	"finops-agent/internal/audit"
	"finops-agent/internal/core"
	"finops-agent/internal/db"
	"finops-agent/internal/mail"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	invoices := core.NewInvoiceService(pool)
	customers := core.NewCustomerService(pool)

	auditPath := os.Getenv("AUDIT_LOG_PATH")
	if auditPath == "" {
		auditPath = "logs/audit.jsonl"
	}
	sink := audit.NewFileSink(auditPath)

	var transport app.EmailTransport = mail.Disabled{}
	cfg, ok, err := mail.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid SMTP configuration: %v", err)
	}
	if ok {
		smtp, err := mail.NewSMTPTransport(cfg)
		if err != nil {
			log.Fatalf("Unable to initialise SMTP transport: %v", err)
		}
		transport = smtp
	} else {
		log.Println("Warning: SMTP_HOST is not set, email sending is disabled")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	controller := app.NewController(invoices, customers, transport, sink, agent, app.Options{
		FallbackRecipient: os.Getenv("FALLBACK_RECIPIENT"),
	})

	if len(os.Args) > 1 {
		cli.Run(ctx, controller, os.Args[1:])
		return
	}
	repl.Run(ctx, controller, bufio.NewReader(os.Stdin))
}
