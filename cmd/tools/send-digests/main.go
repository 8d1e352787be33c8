// Package main implements the send-digests CLI tool. It evaluates the
// compliance rules for every tenant with an active paid plan and mails each
// tenant a digest of its open alerts.
//
// Scheduling is external: run this from cron (or an equivalent scheduler)
// once per day. The API's notification feed stays pull-only; this tool is the
// only push path.
//
// Usage:
//
//	go run ./cmd/tools/send-digests
//	go run ./cmd/tools/send-digests --tenant=ten_42
//	go run ./cmd/tools/send-digests --dry-run
//
// Configuration comes from the same environment variables as the API server
// (DATABASE_URL, EMAIL_*, APP_URL), loaded via godotenv when a .env file is
// present. In --dry-run mode, alert batches are printed but no mail is sent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"golang.org/x/sync/errgroup"

	"hrdocs/internal/compliance"
	"hrdocs/internal/config"
	"hrdocs/internal/db"
	"hrdocs/internal/entitlements"
	"hrdocs/internal/external"
	"hrdocs/internal/metrics"
	"hrdocs/internal/notifications"
	"hrdocs/internal/types"
)

const runTimeout = 10 * time.Minute

func main() {
	tenantFlag := flag.String("tenant", "", "Restrict the run to a single tenant ID")
	dryRunFlag := flag.Bool("dry-run", false, "Evaluate and print alert batches without sending mail")
	flag.Parse()

	if err := run(*tenantFlag, *dryRunFlag); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(tenantID string, dryRun bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("digest run starting", "dry_run", dryRun, "tenant_filter", tenantID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, runTimeout)
	defer timeoutCancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	collector, err := newMetricsCollector(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	tenants := db.NewTenantRepository(pool)
	employees := db.NewEmployeeRepository(pool)
	documents := db.NewDocumentRepository(pool)
	gatekeeper := entitlements.NewGatekeeper(entitlements.NewStaticCatalog())
	engine := compliance.NewEngine()

	mailer := external.NewMailClient(
		&http.Client{Timeout: cfg.Email.Timeout},
		external.MailClientConfig{
			APIKey:      cfg.Email.APIKey.Unmask(),
			BaseURL:     cfg.Email.BaseURL,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			Logger:      logger,
		},
	)
	deliverer := notifications.NewDeliverer(
		mailer, collector, logger, cfg.Server.AppURL, cfg.Email.Enabled && !dryRun)

	targets, err := resolveTargets(ctx, tenants, tenantID)
	if err != nil {
		return err
	}

	var sent, skipped, failed int
	now := time.Now().UTC()

	for _, tenant := range targets {
		gate := gatekeeper.Derive(tenant.Plan, tenant.PlanExpiresAt, now)
		if !gate.CanUseFeature(types.FeatureNotifications) {
			skipped++
			continue
		}

		items, err := collectItems(ctx, employees, documents, engine, tenant.ID)
		if err != nil {
			logger.Error("snapshot fetch failed",
				"tenant_id", tenant.ID, "error", err)
			failed++
			continue
		}
		if len(items) == 0 {
			skipped++
			continue
		}

		if dryRun {
			for _, item := range items {
				fmt.Printf("%s\t%s\t%s\t%d days\t%s\n",
					tenant.ID, item.Type, item.Urgency, item.DaysLeft, item.Message)
			}
			sent++
			continue
		}

		if _, err := deliverer.SendDigest(ctx, &tenant, items); err != nil {
			logger.Error("digest delivery failed",
				"tenant_id", tenant.ID, "error", err)
			failed++
			continue
		}
		sent++
	}

	logger.Info("digest run complete",
		"tenants", len(targets), "sent", sent, "skipped", skipped, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d digests failed", failed, len(targets))
	}
	return nil
}

// resolveTargets returns the tenants to evaluate: either the one named by the
// --tenant flag or every tenant with an unexpired paid window.
func resolveTargets(ctx context.Context, tenants *db.TenantRepository, tenantID string) ([]types.Tenant, error) {
	if tenantID != "" {
		tenant, err := tenants.GetByID(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("loading tenant %s: %w", tenantID, err)
		}
		return []types.Tenant{*tenant}, nil
	}
	list, err := tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active tenants: %w", err)
	}
	return list, nil
}

// collectItems fetches the tenant's employee and document snapshots in
// parallel and runs the rule engine over them.
func collectItems(
	ctx context.Context,
	employees *db.EmployeeRepository,
	documents *db.DocumentRepository,
	engine *compliance.Engine,
	tenantID string,
) ([]types.NotificationItem, error) {
	var (
		emps []types.Employee
		docs []types.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emps, err = employees.ListByTenant(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = documents.ListByTenant(gctx, tenantID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return engine.CheckAll(emps, docs), nil
}

// newMetricsCollector mirrors the API server's collector wiring so batch and
// delivery metrics from scheduled runs land in the same namespace.
func newMetricsCollector(ctx context.Context, cfg *config.Config, logger *slog.Logger) (metrics.Collector, error) {
	if !cfg.AWS.MetricsEnabled {
		return metrics.Noop{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return metrics.NewCloudWatchCollector(client, logger), nil
}
