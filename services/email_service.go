package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailService sends trust-tier notifications via Resend. When email is
// disabled in config, sends become no-ops so callers never need to branch.
type EmailService struct {
	config  *config.EmailConfig
	client  *resend.Client
	metrics *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "enabled", cfg.Enabled)
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vyaparsathi_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vyaparsathi_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		client:  client,
		metrics: metrics,
	}
}

// SendTierChangeEmail notifies a business owner that their trust tier moved.
func (s *EmailService) SendTierChangeEmail(ctx context.Context, business types.Business, oldTier, newTier types.TrustTier) error {
	if !s.config.Enabled {
		logger.GetLogger().Debugw("Email disabled, skipping tier notification",
			"businessID", business.ID, "newTier", newTier)
		return nil
	}
	if business.Email == "" {
		logger.GetLogger().Debugw("Business has no contact email, skipping tier notification",
			"businessID", business.ID)
		return nil
	}

	direction := "upgraded"
	if newTier < oldTier {
		direction = "downgraded"
	}

	data := types.EmailData{
		To:      business.Email,
		Subject: fmt.Sprintf("Your VyaparSathi trust tier is now %s", newTier.Label()),
		TemplateData: map[string]interface{}{
			"BusinessName": business.Name,
			"OldTierLabel": oldTier.Label(),
			"NewTierLabel": newTier.Label(),
			"Direction":    direction,
			"DashboardURL": s.dashboardURL(business.ID),
		},
	}
	return s.send(ctx, "tier_change", tierChangeEmailTemplate, data)
}

func (s *EmailService) dashboardURL(businessID string) string {
	return fmt.Sprintf("https://app.vyaparsathi.com/businesses/%s/credibility", businessID)
}

func (s *EmailService) send(ctx context.Context, name, tmplText string, data types.EmailData) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	tmpl, err := template.New(name).Parse(tmplText)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to parse email template", "error", err, "template", name)
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var htmlContent bytes.Buffer
	if err := tmpl.Execute(&htmlContent, data.TemplateData); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err, "template", name)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{data.To},
		Subject: data.Subject,
		Html:    htmlContent.String(),
	}

	_, err = s.client.Emails.Send(params)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", data.To,
			"subject", data.Subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", data.To,
		"subject", data.Subject)

	return nil
}

const tierChangeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Trust Tier Update</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f7f7f7;
            color: #333333;
            margin: 0;
            padding: 20px;
            text-align: center;
        }
        .container {
            max-width: 600px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
            box-shadow: 0 4px 8px rgba(0, 0, 0, 0.05);
        }
        h1 {
            color: #1A7F5A;
            font-size: 28px;
            margin-bottom: 20px;
        }
        p {
            font-size: 16px;
            line-height: 1.6;
            margin-bottom: 25px;
        }
        .tier {
            font-size: 20px;
            font-weight: bold;
            color: #1A7F5A;
        }
        .button {
            display: inline-block;
            padding: 12px 24px;
            font-size: 16px;
            font-weight: bold;
            text-decoration: none;
            background-color: #1A7F5A;
            color: #ffffff;
            border-radius: 8px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Your Trust Tier Changed</h1>
        <p>Namaste {{.BusinessName}},</p>
        <p>Your business has been {{.Direction}} from
           <span class="tier">{{.OldTierLabel}}</span> to
           <span class="tier">{{.NewTierLabel}}</span>.</p>
        <p>
            <a href="{{.DashboardURL}}" class="button">
                View Your Credibility Dashboard
            </a>
        </p>
    </div>
</body>
</html>`
