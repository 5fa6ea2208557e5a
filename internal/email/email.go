package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Dispatcher delivers transactional mail. Failure is reported to the caller
// and never retried here.
type Dispatcher interface {
	SendOTP(ctx context.Context, toEmail, code, purpose string) error
}

const otpBody = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0095f6;">Social</h2>
  <p>{{.Message}}</p>
  <h1 style="color: #0095f6; font-size: 32px; letter-spacing: 5px;">{{.Code}}</h1>
  <p>This OTP will expire in 10 minutes.</p>
  <p>If you didn't request this, please ignore this email.</p>
</div>`

// BrevoDispatcher sends mail via the Brevo (Sendinblue) HTTP API v3, behind
// a circuit breaker so a failing mail provider cannot tie up request
// handlers.
type BrevoDispatcher struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *zap.SugaredLogger
	tpl         *template.Template
}

func NewBrevoDispatcher(apiKey, senderEmail, senderName string, logger *zap.SugaredLogger) *BrevoDispatcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "email",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &BrevoDispatcher{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    "https://api.brevo.com/v3/smtp/email",
		client:      &http.Client{Timeout: 10 * time.Second},
		breaker:     cb,
		logger:      logger,
		tpl:         template.Must(template.New("otp").Parse(otpBody)),
	}
}

func (d *BrevoDispatcher) SendOTP(ctx context.Context, toEmail, code, purpose string) error {
	subject := "Social - OTP Verification"
	message := "Your OTP for email verification is:"
	if purpose == "Password Reset" {
		subject = "Social - Password Reset OTP"
		message = "Your OTP for password reset is:"
	}
	var buf bytes.Buffer
	if err := d.tpl.Execute(&buf, struct {
		Message string
		Code    string
	}{message, code}); err != nil {
		return err
	}
	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.send(ctx, toEmail, subject, buf.String())
	})
	return err
}

func (d *BrevoDispatcher) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	payload := map[string]any{
		"sender":      map[string]string{"name": d.senderName, "email": d.senderEmail},
		"to":          []map[string]string{{"email": toEmail}},
		"subject":     subject,
		"htmlContent": htmlContent,
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", d.endpoint, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		d.logger.Infow("email sent", "to", toEmail, "subject", subject)
		return nil
	}
	d.logger.Warnw("email send failed", "status", resp.StatusCode)
	return fmt.Errorf("email send failed status=%d", resp.StatusCode)
}
