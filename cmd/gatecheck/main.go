// Command gatecheck evaluates the production readiness gate for one slate
// date. It prints the verdict with every blocking slot and exits non-zero
// when the gate fails, so pipelines can stop before predictions run on an
// incomplete slate.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"ncaam_v5/resolution/internal/config"
	"ncaam_v5/resolution/internal/gate"
	"ncaam_v5/resolution/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	date := flag.String("date", "", "Slate date (YYYY-MM-DD), defaults to today in the gate timezone")
	asJSON := flag.Bool("json", false, "Print the full result as JSON")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// No cache here: a manual check must see the database as it is now,
	// not a verdict cached minutes ago.
	checker := gate.NewChecker(db, nil, cfg.GateLocation(), 0)

	if *date == "" {
		*date = checker.Today()
	}

	result, err := checker.Check(ctx, *date)
	if err != nil {
		log.Fatal().Err(err).Str("date", *date).Msg("Gate check failed to run")
	}

	if *asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
		fmt.Println(string(out))
		if !result.GatePassed {
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Readiness gate for %s\n", result.Date)
	fmt.Printf("  Games:      %d\n", result.TotalGames)
	fmt.Printf("  Slots:      %d\n", result.TotalSlots)
	fmt.Printf("  Rated:      %d\n", result.RatedSlots)
	fmt.Printf("  Match rate: %.1f%%\n", result.MatchRatePercent)

	if result.GatePassed {
		fmt.Println("GATE PASSED: every slot resolved and rated")
		return
	}

	fmt.Printf("GATE FAILED: %d blocking slot(s)\n", len(result.Blockers))
	for _, b := range result.Blockers {
		fmt.Printf("  [%s] %s %q: %s\n", b.ExternalID, b.Slot, b.TeamLabel, b.Reason)
	}
	os.Exit(1)
}
