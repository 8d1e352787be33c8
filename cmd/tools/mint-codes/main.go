// Package main implements the mint-codes CLI tool for generating license
// code batches directly against the database, bypassing any sales tooling.
//
// This tool is intended for local development and for operators fulfilling
// offline purchases. It generates random codes, inserts them, and prints the
// minted literals to stdout so they can be handed to customers.
//
// Usage:
//
//	go run ./cmd/tools/mint-codes --plan=business --days=365
//	go run ./cmd/tools/mint-codes --plan=starter --days=30 --count=25
//	go run ./cmd/tools/mint-codes --plan=pro --days=365 --claim-by=2026-12-31
//
// The tool reads DATABASE_URL from environment variables (or .env file via
// godotenv). In --dry-run mode, it prints the codes it would mint without
// touching the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"hrdocs/internal/db"
	"hrdocs/internal/license"
	"hrdocs/internal/types"
)

const (
	maxBatchSize = 1000
	mintTimeout  = 30 * time.Second
)

func main() {
	planFlag := flag.String("plan", "", "Plan tier the codes grant (starter, business, pro)")
	daysFlag := flag.Int("days", 0, "Plan window in days granted on redemption")
	countFlag := flag.Int("count", 1, "Number of codes to mint")
	claimByFlag := flag.String("claim-by", "", "Optional claim deadline (YYYY-MM-DD); codes are unclaimable after this date")
	dryRunFlag := flag.Bool("dry-run", false, "Print generated codes without inserting them")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mint-codes [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Generate single-use license codes and insert them into the database.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	plan := types.PlanTier(*planFlag)
	if !slices.Contains(types.PaidPlans, plan) {
		fmt.Fprintf(os.Stderr, "error: --plan must be one of starter, business, pro (got %q)\n", *planFlag)
		os.Exit(1)
	}
	if *daysFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: --days must be a positive number of days")
		os.Exit(1)
	}
	if *countFlag <= 0 || *countFlag > maxBatchSize {
		fmt.Fprintf(os.Stderr, "error: --count must be between 1 and %d\n", maxBatchSize)
		os.Exit(1)
	}

	var claimBy *time.Time
	if *claimByFlag != "" {
		parsed, err := time.Parse("2006-01-02", *claimByFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: --claim-by must be YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		// Deadline is inclusive of the named day.
		deadline := parsed.AddDate(0, 0, 1).UTC()
		claimBy = &deadline
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, mintTimeout)
	defer timeoutCancel()

	if *dryRunFlag {
		for i := 0; i < *countFlag; i++ {
			code, err := license.Generate()
			if err != nil {
				logger.Error("code generation failed", "error", err)
				os.Exit(1)
			}
			fmt.Println(code)
		}
		logger.Info("dry run complete, nothing inserted", "count", *countFlag)
		return
	}

	// godotenv.Load() silently succeeds if no .env file exists.
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "error: DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := db.NewLicenseCodeRepository(pool)

	minted := 0
	for minted < *countFlag {
		literal, err := license.Generate()
		if err != nil {
			logger.Error("code generation failed", "error", err)
			os.Exit(1)
		}
		err = repo.Create(ctx, &types.LicenseCode{
			Code:         literal,
			Plan:         plan,
			DurationDays: *daysFlag,
			ExpiresAt:    claimBy,
		})
		if err != nil {
			// A primary key collision on the 8-char space is vanishingly rare
			// but possible; retry with a fresh literal.
			if isDuplicate(err) {
				logger.Warn("code collision, regenerating", "code", literal)
				continue
			}
			logger.Error("insert failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(literal)
		minted++
	}

	logger.Info("minted license codes",
		"count", minted,
		"plan", plan,
		"duration_days", *daysFlag,
	)
}

// isDuplicate reports whether the insert failed on the unique code constraint.
func isDuplicate(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeConflictDuplicateCode
}
