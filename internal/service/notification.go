package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/ratelimit"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
type LogMailer struct {
	logger   *slog.Logger
	showBody bool
}

func NewLogMailer(logger *slog.Logger, showBody bool) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger, showBody: showBody}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	attrs := []any{"to", msg.To, "subject", msg.Subject}
	if m.showBody {
		attrs = append(attrs, "body", msg.Text)
	}
	m.logger.InfoContext(ctx, "email delivered to log", attrs...)
	return nil
}

// ResendMailer delivers through the Resend HTTP API.
type ResendMailer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	from    string
}

func NewResendMailer(client *http.Client, baseURL, apiKey, fromName, fromEmail string) *ResendMailer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	from := fromEmail
	if strings.TrimSpace(fromName) != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	return &ResendMailer{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(resendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrDispatchFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrDispatchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: resend status %d: %s", ErrDispatchFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// CodeNotification is the payload for a verification or reset email.
type CodeNotification struct {
	Email    string
	FullName string
	Code     string
	Purpose  domain.CodePurpose
	ValidFor time.Duration
}

// CodeNotifier hands codes to delivery. It never reports delivery failure to
// the caller.
type CodeNotifier interface {
	NotifyCode(ctx context.Context, n CodeNotification)
}

var codeEmailTemplate = template.Must(template.New("code_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Heading}}</h2>
  <p>Hello {{.Name}},</p>
  <p>{{.Intro}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>This code expires in {{.Minutes}} minutes.</p>
  <p>If you did not request this, you can ignore this email.</p>
  <p>The {{.AppName}} Team</p>
</body>
</html>`))

type codeEmailData struct {
	AppName string
	Heading string
	Name    string
	Intro   string
	Code    string
	Minutes int
}

type DispatcherOptions struct {
	AppName         string
	MaxInFlight     int64
	SendTimeout     time.Duration
	RecipientLimit  int
	RecipientWindow time.Duration
	Provider        string
}

// NotificationDispatcher renders code emails and sends them in the
// background, bounded by MaxInFlight and a per-recipient throttle.
type NotificationDispatcher struct {
	mailer   Mailer
	throttle ratelimit.Limiter
	opts     DispatcherOptions
	sem      *semaphore.Weighted
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(mailer Mailer, throttle ratelimit.Limiter, opts DispatcherOptions, logger *slog.Logger) *NotificationDispatcher {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 8
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.Provider == "" {
		opts.Provider = "log"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationDispatcher{
		mailer:   mailer,
		throttle: throttle,
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.MaxInFlight),
		logger:   logger,
	}
}

func (d *NotificationDispatcher) NotifyCode(ctx context.Context, n CodeNotification) {
	kind := string(n.Purpose)
	msg, err := d.render(n)
	if err != nil {
		observability.RecordNotificationDispatch(ctx, kind, "render_error")
		d.logger.ErrorContext(ctx, "render notification failed", "kind", kind, "error", err)
		return
	}

	// Detach from the request so the send outlives the response.
	sendCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(sendCtx, kind, msg)
	}()
}

func (d *NotificationDispatcher) deliver(ctx context.Context, kind string, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	if d.throttle != nil && d.opts.RecipientLimit > 0 {
		allowed, retryAfter, err := d.throttle.Allow(ctx, "mail:"+strings.ToLower(msg.To), d.opts.RecipientLimit, d.opts.RecipientWindow)
		switch {
		case err != nil:
			d.logger.WarnContext(ctx, "mail throttle unavailable, sending anyway", "kind", kind, "error", err)
		case !allowed:
			observability.RecordNotificationDispatch(ctx, kind, "throttled")
			d.logger.WarnContext(ctx, "notification throttled", "kind", kind, "to", msg.To, "retry_after", retryAfter.String())
			return
		}
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		observability.RecordNotificationDispatch(ctx, kind, "dropped")
		d.logger.WarnContext(ctx, "notification dropped while waiting for a send slot", "kind", kind, "error", err)
		return
	}
	defer d.sem.Release(1)

	start := time.Now()
	err := d.mailer.Send(ctx, msg)
	observability.RecordNotificationDuration(ctx, d.opts.Provider, time.Since(start))
	if err != nil {
		observability.RecordNotificationDispatch(ctx, kind, "failed")
		d.logger.ErrorContext(ctx, "notification dispatch failed", "kind", kind, "to", msg.To, "error", err)
		return
	}
	observability.RecordNotificationDispatch(ctx, kind, "sent")
}

// Drain blocks until queued sends finish or ctx ends.
func (d *NotificationDispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *NotificationDispatcher) render(n CodeNotification) (Message, error) {
	data := codeEmailData{
		AppName: d.opts.AppName,
		Name:    n.FullName,
		Code:    n.Code,
		Minutes: int(n.ValidFor.Round(time.Minute) / time.Minute),
	}
	if data.Name == "" {
		data.Name = "there"
	}
	var subject, action string
	switch n.Purpose {
	case domain.CodePurposeEmailVerification:
		subject = d.opts.AppName + " - Verify Your Email"
		data.Heading = "Verify your email"
		data.Intro = "Use the code below to verify your email address."
		action = "verify your email"
	case domain.CodePurposePasswordReset:
		subject = d.opts.AppName + " - Reset Your Password"
		data.Heading = "Reset your password"
		data.Intro = "Use the code below to reset your password."
		action = "reset your password"
	default:
		return Message{}, fmt.Errorf("unknown notification purpose %q", n.Purpose)
	}

	var html bytes.Buffer
	if err := codeEmailTemplate.Execute(&html, data); err != nil {
		return Message{}, err
	}
	text := fmt.Sprintf("Hello %s,\n\nYour code to %s is %s. It expires in %d minutes.\n\nThe %s Team\n",
		data.Name, action, n.Code, data.Minutes, d.opts.AppName)
	return Message{To: n.Email, Subject: subject, HTML: html.String(), Text: text}, nil
}
