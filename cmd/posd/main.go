/*
main.go - posd: process wiring for the POS transaction kernel

PURPOSE:
  Loads a store profile index, runs the schema migration runner against
  the first profile's catalog database, builds a Store Extension and
  Transaction Engine for that profile, registers the reference tool
  catalog, and (optionally) serves a read-only debug HTTP surface.
  Profiles after the first are not used.

STARTUP SEQUENCE:
  1. Parse command-line flags.
  2. Load the store profile index (storeext.LoadProfileIndex).
  3. For the first profile: run schema migrations, build
     catalog+modifiers+currency into a StoreExtension, construct the
     Transaction Engine and Kernel Client.
  4. Register the reference tool catalog on a Tool Executor.
  5. Optionally start the debug HTTP surface.

EXIT CODES (spec.md §6):
  0 clean exit, 2 profile load failure, 3 no profiles discovered,
  1 otherwise.

GROUNDED ON:
  cmd/server/main.go's flag-based CLI, log.Printf/log.Fatalf logging,
  and signal.Notify + server.Shutdown(ctx) graceful shutdown.
*/
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/posware/kernel/catalog"
	"github.com/posware/kernel/client"
	"github.com/posware/kernel/currency"
	"github.com/posware/kernel/kernel"
	"github.com/posware/kernel/migration"
	"github.com/posware/kernel/modifiers"
	"github.com/posware/kernel/storeext"
	"github.com/posware/kernel/toolexec"
)

func main() {
	os.Exit(run())
}

func run() int {
	profilesPath := flag.String("profiles", "profiles/index.json", "path to the store profile index")
	terminalId := flag.String("terminal", "TERM1", "terminal id for the ambient reference terminal")
	operatorId := flag.String("operator", "OP1", "operator id for the ambient reference terminal")
	debugPort := flag.Int("debug-port", 0, "if nonzero, serve a read-only debug HTTP surface on this port")
	flag.Parse()

	profiles, err := storeext.LoadProfileIndex(*profilesPath)
	if err != nil {
		log.Printf("Failed to load store profile index: %v", err)
		return 2
	}
	if len(profiles) == 0 {
		log.Printf("No store profiles discovered in %q", *profilesPath)
		return 3
	}

	profile := profiles[0]
	terminal, db, err := buildTerminal(profile, *terminalId, *operatorId)
	if err != nil {
		log.Printf("Failed to wire store %q: %v", profile.StoreID, err)
		return 1
	}
	if db != nil {
		defer db.Close()
	}

	executor := toolexec.New()
	client.RegisterReferenceTools(executor, terminal)

	if *debugPort == 0 {
		log.Printf("posd ready for store %q (currency %s); no debug HTTP surface requested", profile.StoreID, profile.Currency)
		return 0
	}

	return serveDebugSurface(terminal, *debugPort)
}

func buildTerminal(profile storeext.StoreProfile, terminalId, operatorId string) (*client.Terminal, *sql.DB, error) {
	var db *sql.DB
	var cat storeext.Catalog = noopCatalog{}
	var modifierGraph modifiers.Graph

	if profile.Database != nil && profile.Database.ConnectionString != "" {
		if err := migration.New(profile.Database.ConnectionString).Run(context.Background(), migration.Info{
			StoreName:     profile.StoreID,
			TargetVersion: 1,
			Scripts:       []migration.Script{}, // no scripts registered: ensures schema_version exists; fails if it already records a version
		}); err != nil {
			return nil, nil, fmt.Errorf("migrate %q: %w", profile.Database.ConnectionString, err)
		}

		opened, err := sql.Open("sqlite3", profile.Database.ConnectionString+"?_foreign_keys=on&_journal_mode=WAL")
		if err != nil {
			return nil, nil, fmt.Errorf("open %q: %w", profile.Database.ConnectionString, err)
		}
		db = opened
		cat = catalog.NewFromDB(opened)

		graph, err := modifiers.LoadFromDB(context.Background(), opened)
		if err != nil {
			return nil, nil, fmt.Errorf("load modifier graph: %w", err)
		}
		modifierGraph = graph
	}

	modifierEngine := modifiers.NewEngine(modifierGraph)
	extension, err := storeext.NewExtension(cat, modifierEngine, currency.DefaultFormatter{})
	if err != nil {
		return nil, db, err
	}

	lookup := func(canonical string) (allowsChange, requiresExact bool, known bool) {
		for _, pt := range profile.PaymentTypes {
			if pt.ID == canonical {
				return pt.AllowsChange, pt.RequiresExact, true
			}
		}
		return false, false, false
	}
	var rules kernel.PaymentRules = kernel.TenderTypePaymentRules{Lookup: lookup}
	if len(profile.PaymentTypes) == 0 {
		rules = kernel.DefaultPaymentRules{}
	}

	engine, err := kernel.NewEngine(rules)
	if err != nil {
		return nil, db, err
	}

	kc := client.New(engine)
	terminal, err := client.NewTerminal(kc, extension, terminalId, operatorId)
	if err != nil {
		return nil, db, err
	}
	return terminal, db, nil
}

func serveDebugSurface(terminal *client.Terminal, port int) int {
	router := newDebugRouter(terminal)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("debug HTTP surface listening on http://localhost:%d", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("debug server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down debug HTTP surface...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("debug server forced to shutdown: %v", err)
		return 1
	}
	return 0
}

// noopCatalog is used when a profile carries no database binding: every
// product lookup fails closed rather than inventing a price (spec.md §1:
// "the kernel never synthesizes product data").
type noopCatalog struct{}

func (noopCatalog) ValidateProduct(ctx context.Context, productId string) (storeext.ProductValidation, error) {
	return storeext.ProductValidation{IsValid: false, ErrorMessage: "no catalog database configured for this store"}, nil
}

func (noopCatalog) SearchProducts(ctx context.Context, term string, maxResults int) ([]storeext.ProductInfo, error) {
	return nil, nil
}

func (noopCatalog) GetPopularItems(ctx context.Context) ([]storeext.ProductInfo, error) {
	return nil, nil
}
