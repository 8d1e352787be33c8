// Package notifications turns compliance alert batches into outbound emails.
// The rule engine itself never sends anything; this layer renders its items
// and hands them to the mail provider.
package notifications

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"hrdocs/internal/external"
	"hrdocs/internal/metrics"
	"hrdocs/internal/types"
)

// Deliverer renders compliance digests and sends them through the Mailer.
type Deliverer struct {
	mailer  external.Mailer
	metrics metrics.Collector
	logger  *slog.Logger
	appURL  string
	enabled bool
}

// NewDeliverer creates a digest deliverer. appURL is the public dashboard URL
// used to absolutize item action links; enabled=false turns delivery into a
// logged no-op (the email kill switch).
func NewDeliverer(mailer external.Mailer, collector metrics.Collector, logger *slog.Logger, appURL string, enabled bool) *Deliverer {
	if collector == nil {
		collector = metrics.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deliverer{
		mailer:  mailer,
		metrics: collector,
		logger:  logger,
		appURL:  strings.TrimSuffix(appURL, "/"),
		enabled: enabled,
	}
}

// SendDigest emails the tenant a digest of the given alert items and returns
// the provider message ID. An empty batch sends nothing. Items are expected
// in the engine's sorted order and are rendered as-is.
func (d *Deliverer) SendDigest(ctx context.Context, tenant *types.Tenant, items []types.NotificationItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	d.metrics.RecordAlertBatch(ctx, len(items))

	if !d.enabled {
		d.logger.Info("email delivery disabled; digest skipped",
			slog.String("tenant_id", tenant.ID),
			slog.Int("item_count", len(items)),
		)
		return "", nil
	}

	subject := fmt.Sprintf("%d compliance deadline(s) need attention", len(items))
	htmlBody, err := d.renderHTML(tenant, items)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to render digest email", err)
	}
	textBody := d.renderText(items)

	start := time.Now()
	msgID, err := d.mailer.Send(ctx, tenant.Email, subject, htmlBody, textBody)
	if err != nil {
		d.metrics.RecordEmailDelivery(ctx, metrics.ResultFailure, time.Since(start))
		d.logger.Error("digest delivery failed",
			slog.String("tenant_id", tenant.ID),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	d.metrics.RecordEmailDelivery(ctx, metrics.ResultSuccess, time.Since(start))

	d.logger.Info("compliance digest sent",
		slog.String("tenant_id", tenant.ID),
		slog.String("message_id", msgID),
		slog.Int("item_count", len(items)),
	)
	return msgID, nil
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<body>
<p>Hello {{.TenantName}},</p>
<p>The following HR compliance deadlines need your attention:</p>
<table border="0" cellpadding="6">
<tr><th align="left">Urgency</th><th align="left">Deadline</th><th align="left">Item</th></tr>
{{range .Items}}<tr>
<td><strong>{{.Urgency}}</strong></td>
<td>{{.TargetDate.Format "2006-01-02"}}</td>
<td><a href="{{$.AppURL}}{{.ActionURL}}">{{.Title}}</a><br>{{.Message}}</td>
</tr>
{{end}}</table>
<p>This digest was generated automatically from your current employee and document records.</p>
</body>
</html>`))

func (d *Deliverer) renderHTML(tenant *types.Tenant, items []types.NotificationItem) (string, error) {
	var buf strings.Builder
	err := digestTemplate.Execute(&buf, struct {
		TenantName string
		AppURL     string
		Items      []types.NotificationItem
	}{
		TenantName: tenant.Name,
		AppURL:     d.appURL,
		Items:      items,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderText builds the plain-text alternative body.
func (d *Deliverer) renderText(items []types.NotificationItem) string {
	var buf strings.Builder
	buf.WriteString("HR compliance deadlines:\n\n")
	for _, item := range items {
		fmt.Fprintf(&buf, "[%s] %s (%s) - %s\n",
			strings.ToUpper(string(item.Urgency)),
			item.Title,
			item.TargetDate.Format("2006-01-02"),
			item.Message,
		)
	}
	return buf.String()
}
