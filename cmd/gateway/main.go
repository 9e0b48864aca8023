package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/baitline/baitline/pkg/config"
	"github.com/baitline/baitline/pkg/detect"
	"github.com/baitline/baitline/pkg/honeypot"
	"github.com/baitline/baitline/pkg/intel"
	"github.com/baitline/baitline/pkg/report"
	"github.com/baitline/baitline/pkg/session"
	"github.com/baitline/baitline/pkg/telemetry"
)

const Version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.Port = os.Args[2]
		}
		runHTTPServer(cfg)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: baitline scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Baitline v%s\n", Version)
		fmt.Println("Conversational scam-intelligence honeypot")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Baitline v%s - Scam Intelligence Honeypot\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  baitline serve [port]   Start the honeypot gateway (default: 8080)")
	fmt.Println("  baitline scan <text>    Run one message through the pipeline locally")
	fmt.Println("  baitline version        Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  BAITLINE_API_KEY              Shared secret for the x-api-key header")
	fmt.Println("  BAITLINE_CALLBACK_URL         Collector endpoint for final dossiers")
	fmt.Println("  BAITLINE_ACTIVATION_THRESHOLD Scam score that activates probing (default: 40)")
	fmt.Println("  BAITLINE_RULES_PATH           YAML detection-rules override")
	fmt.Println("  BAITLINE_ARCHIVE_DSN          Postgres DSN for the dossier archive")
	fmt.Println("  BAITLINE_LEDGER_ADDR          Redis address for the report ledger")
}

// buildOrchestrator wires the pipeline from configuration. Optional
// collaborators (archive, ledger) degrade gracefully when absent or
// unreachable.
func buildOrchestrator(cfg *config.Config) *honeypot.Orchestrator {
	if cfg.RulesPath != "" {
		if err := detect.LoadRules(cfg.RulesPath); err != nil {
			log.Printf("[STARTUP] Warning: detection rules not loaded: %v", err)
		}
	}

	var sinks report.MultiSink
	if cfg.CallbackURL != "" {
		sinks = append(sinks, report.NewHTTPSink(cfg.CallbackURL, report.WithAPIKey(cfg.CallbackAPIKey)))
		log.Printf("[STARTUP] ✓ Collector sink enabled (%s)", cfg.CallbackURL)
	} else {
		sinks = append(sinks, report.SinkFunc(func(_ context.Context, d *report.Dossier) error {
			payload, _ := json.Marshal(d)
			log.Printf("[REPORT] No collector configured; dossier: %s", payload)
			return nil
		}))
		log.Println("[STARTUP] ○ Collector sink disabled (no callback URL); dossiers go to the log")
	}

	if cfg.ArchiveDSN != "" {
		archive, err := report.NewPostgresArchive(context.Background(), cfg.ArchiveDSN)
		if err != nil {
			log.Printf("[STARTUP] ○ Dossier archive disabled (init failed: %v)", err)
		} else {
			sinks = append(sinks, archive)
			log.Println("[STARTUP] ✓ Dossier archive enabled (Postgres)")
		}
	}

	opts := []honeypot.Option{
		honeypot.WithActivationThreshold(cfg.ActivationThreshold),
		honeypot.WithExtractor(intel.NewExtractor(intel.WithCountryCode(cfg.PhoneCountryCode))),
	}
	if cfg.LedgerAddr != "" {
		ledger, err := report.NewLedger(context.Background(), cfg.LedgerAddr)
		if err != nil {
			log.Printf("[STARTUP] ○ Report ledger disabled (init failed: %v)", err)
		} else {
			opts = append(opts, honeypot.WithLedger(ledger))
			log.Println("[STARTUP] ✓ Report ledger enabled (Redis)")
		}
	}

	store := session.NewStore(session.WithOnCreate(func(*session.Session) {
		telemetry.ActiveSessions.Inc()
	}))
	dispatcher := report.NewDispatcher(sinks, cfg.CallbackTimeout)
	return honeypot.New(store, dispatcher, opts...)
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func runHTTPServer(cfg *config.Config) {
	cfg.MustValidate()
	orch := buildOrchestrator(cfg)

	go telemetry.Serve(cfg.MetricsAddr)

	app := fiber.New(fiber.Config{
		AppName: "Baitline",
	})

	// Auth gate for everything except the health check. A deployment
	// without a configured key (development) accepts all callers.
	app.Use(func(c fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}
		if cfg.APIKey != "" && c.Get("x-api-key") != cfg.APIKey {
			return c.Status(401).JSON(fiber.Map{"error": "invalid or missing API key"})
		}
		return c.Next()
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Get("/auth-test", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "auth ok"})
	})

	app.Post("/message", func(c fiber.Ctx) error {
		var req messageRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.SessionID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "sessionId field is required"})
		}

		result := orch.HandleTurn(c.Context(), req.SessionID, req.Message)
		return c.JSON(result)
	})

	log.Printf("[STARTUP] Baitline gateway starting on :%s", cfg.Port)
	log.Printf("  GET  /health     - Health check")
	log.Printf("  GET  /auth-test  - Auth smoke test")
	log.Printf("  POST /message    - Inbound conversation turn")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

// runCLIScan pushes one message through a throwaway pipeline and prints the
// reply plus the resulting session analysis. Local debugging aid; no
// collector is contacted.
func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()
	cfg.CallbackURL = "" // dossiers to the log only
	orch := buildOrchestrator(cfg)

	result := orch.HandleTurn(context.Background(), "cli-scan", text)

	scorer := detect.NewScamScorer()
	out := map[string]any{
		"reply":        result.Reply,
		"messageScore": scorer.Score(text),
		"strongSignal": scorer.StrongSignal(text),
		"entities":     intel.NewExtractor().Extract(text),
	}
	payload, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(payload))
}
