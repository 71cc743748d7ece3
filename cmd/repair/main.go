// Command repair is the operator surface for fixing registry state. It lists
// the unresolved provider inputs and duplicate canonical names that need
// triage, repoints a bad alias at the right team, and merges an unrated
// shadow team into its real row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/config"
	"ncaam_v5/resolution/internal/models"
	"ncaam_v5/resolution/internal/repair"
	"ncaam_v5/resolution/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

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

	// Repairs invalidate shared resolution cache entries, so talk to the
	// same Redis the worker uses when it is reachable.
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - stale cache entries will expire on their TTL")
	} else {
		defer redisCache.Close()
	}

	repairer := repair.NewRepairer(db, redisCache)

	switch strings.ToLower(strings.TrimSpace(os.Args[1])) {
	case "unresolved":
		runUnresolved(ctx, db, os.Args[2:])
	case "duplicates":
		runDuplicates(ctx, db)
	case "alias":
		runAlias(ctx, db, repairer, os.Args[2:])
	case "merge":
		runMerge(ctx, db, repairer, os.Args[2:])
	default:
		printUsage()
		os.Exit(2)
	}
}

// runUnresolved prints the triage view: provider spellings with unresolved
// attempts on record, most frequent first.
func runUnresolved(ctx context.Context, db *repository.Database, args []string) {
	fs := flag.NewFlagSet("unresolved", flag.ExitOnError)
	limit := fs.Int("limit", 25, "Maximum rows to print")
	fs.Parse(args)

	rows, err := db.Audit.ListUnresolved(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list unresolved inputs")
	}
	if len(rows) == 0 {
		fmt.Println("No unresolved inputs on record")
		return
	}

	fmt.Printf("%-6s  %-16s  %-40s  %s\n", "SEEN", "SOURCE", "INPUT", "LAST SEEN")
	for _, row := range rows {
		fmt.Printf("%-6d  %-16s  %-40s  %s\n",
			row.Occurrences, row.Source, row.InputName,
			row.LastSeen.Format("2006-01-02 15:04"))
	}
}

// runDuplicates prints case-insensitive canonical-name collisions with each
// member's rating status, so the operator can tell the real row from the
// shadow before running a merge.
func runDuplicates(ctx context.Context, db *repository.Database) {
	groups, err := db.Teams.FindDuplicateCanonicals(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scan for duplicate canonical names")
	}
	if len(groups) == 0 {
		fmt.Println("No duplicate canonical names")
		return
	}

	fmt.Printf("%d duplicated canonical name(s)\n", len(groups))
	for _, g := range groups {
		fmt.Printf("  %q x%d\n", g.Key, g.Count)
		for _, id := range g.TeamIDs {
			team, err := db.Teams.GetByID(ctx, id)
			if err != nil {
				log.Fatal().Err(err).Str("team_id", id.String()).Msg("Failed to load duplicate member")
			}
			rated, err := db.Ratings.HasRatings(ctx, id)
			if err != nil {
				log.Fatal().Err(err).Str("team_id", id.String()).Msg("Failed to check rating status")
			}
			marker := "unrated"
			if rated {
				marker = "rated"
			}
			fmt.Printf("    %s  %-32s  %s\n", id, team.CanonicalName, marker)
		}
	}
}

func runAlias(ctx context.Context, db *repository.Database, repairer *repair.Repairer, args []string) {
	fs := flag.NewFlagSet("alias", flag.ExitOnError)
	aliasName := fs.String("name", "", "Raw provider alias to repoint")
	canonical := fs.String("team", "", "Canonical name of the team the alias belongs to")
	source := fs.String("source", "manual", "Alias source label")
	fs.Parse(args)

	if strings.TrimSpace(*aliasName) == "" || strings.TrimSpace(*canonical) == "" {
		fs.Usage()
		os.Exit(2)
	}

	team := mustTeam(ctx, db, *canonical)
	if err := repairer.RepointAlias(ctx, *aliasName, *source, team.ID); err != nil {
		log.Fatal().Err(err).Str("alias", *aliasName).Msg("Repoint failed")
	}

	fmt.Printf("Alias %q (%s) now resolves to %q\n", *aliasName, *source, team.CanonicalName)
	fmt.Println("The running worker picks this up at its next index rebuild")
}

func runMerge(ctx context.Context, db *repository.Database, repairer *repair.Repairer, args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	duplicate := fs.String("duplicate", "", "Canonical name of the shadow team to fold in")
	target := fs.String("target", "", "Canonical name of the rated team to keep")
	fs.Parse(args)

	if strings.TrimSpace(*duplicate) == "" || strings.TrimSpace(*target) == "" {
		fs.Usage()
		os.Exit(2)
	}

	dup := mustTeam(ctx, db, *duplicate)
	tgt := mustTeam(ctx, db, *target)

	result, err := repairer.MergeShadowTeam(ctx, dup.ID, tgt.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Merge failed")
	}

	fmt.Printf("Merged %q into %q\n", dup.CanonicalName, tgt.CanonicalName)
	fmt.Printf("  Aliases repointed: %d\n", result.AliasesRepointed)
	fmt.Printf("  Games repointed:   %d\n", result.GamesRepointed)
	fmt.Println("The running worker picks this up at its next index rebuild")
}

func mustTeam(ctx context.Context, db *repository.Database, canonical string) *models.Team {
	team, err := db.Teams.GetByCanonicalName(ctx, canonical)
	if err != nil {
		log.Fatal().Err(err).Str("canonical_name", canonical).Msg("Team lookup failed")
	}
	return team
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <unresolved|duplicates|alias|merge> [args]\n", prog)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s unresolved -limit 50\n", prog)
	fmt.Fprintf(os.Stderr, "  %s duplicates\n", prog)
	fmt.Fprintf(os.Stderr, "  %s alias -name \"CSU Bakersfield Roadrunners\" -team \"Cal St. Bakersfield\"\n", prog)
	fmt.Fprintf(os.Stderr, "  %s merge -duplicate \"CSU Bakersfield Roadrunners\" -target \"Cal St. Bakersfield\"\n", prog)
}
