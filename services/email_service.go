package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/cabpool/cabpool-backend/config"
	"github.com/cabpool/cabpool-backend/logger"
	"github.com/cabpool/cabpool-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

const welcomeSubject = "You're on the CabPool list"

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// emailSender is the slice of the Resend emails API the service uses.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailService sends the registration welcome email through Resend.
type EmailService struct {
	config   config.EmailConfig
	sender   emailSender
	template *template.Template
	metrics  *EmailMetrics
}

var _ WelcomeNotifier = (*EmailService)(nil)

func NewEmailService(cfg config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress,
		"apiKey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))

	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cabpool_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cabpool_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cabpool_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:   cfg,
		sender:   client.Emails,
		template: template.Must(template.New("welcome").Parse(welcomeEmailTemplate)),
		metrics:  metrics,
	}
}

// SendWelcomeEmail confirms a stored registration to its owner.
func (s *EmailService) SendWelcomeEmail(ctx context.Context, reg *types.Registration) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	var html bytes.Buffer
	if err := s.template.Execute(&html, reg); err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{reg.Email},
		Subject: welcomeSubject,
		Html:    html.String(),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(reg.Email))
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Welcome email sent", "to", logger.MaskEmail(reg.Email))
	return nil
}

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to CabPool</title>
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        h1 { color: #1a73e8; font-size: 26px; }
        .route { background-color: #f1f5fb; padding: 12px 16px; border-radius: 8px; }
        .footer { font-size: 12px; color: #888888; margin-top: 24px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Thanks for signing up, {{.Name}}!</h1>
        <p>We have saved your interest in sharing rides on this route:</p>
        <p class="route"><strong>{{.PickupPoint}}</strong> &rarr; <strong>{{.DropPoint}}</strong></p>
        <p>We'll be in touch as soon as CabPool launches near you.</p>
        <p class="footer">You received this email because {{.Email}} was registered on the CabPool landing page.</p>
    </div>
</body>
</html>`
