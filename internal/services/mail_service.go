package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/config"
)

type IMailService interface {
	SendMailToNotifyUser(
		to, subject, body, ctaText, ctaURL string,
	) error
	SendMailToResetPassword(email, token string) error
	// SendRendered delivers an already rendered message, e.g. from an
	// email template.
	SendRendered(to, subject, htmlBody, textBody string) error
}

// SMTPConfig holds SMTP credentials and branding.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool // implicit TLS (465) instead of STARTTLS (587)
	RequireTLS bool

	AppName    string
	AppBaseURL string
}

// NewMailService picks the transport named by MAIL_PROVIDER.
func NewMailService(cfg *config.Config) (IMailService, error) {
	branding := brandedLayout{appName: cfg.AppName, appBaseURL: cfg.AppBaseURL}

	switch cfg.MailProvider {
	case "brevo":
		if cfg.BrevoAPIKey == "" {
			return nil, fmt.Errorf("MAIL_PROVIDER=brevo requires BREVO_API_KEY")
		}
		return newBrevoMailService(cfg.BrevoAPIKey, cfg.MailFrom, cfg.MailFromName, branding), nil
	case "smtp", "":
		return NewSMTPMailService(SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			From:       cfg.MailFrom,
			FromName:   cfg.MailFromName,
			UseSSL:     cfg.SMTPUseSSL,
			AppName:    cfg.AppName,
			AppBaseURL: cfg.AppBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}

// ------------------- Layout -------------------

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

var (
	layoutHTML = template.Must(template.New("layoutHTML").Parse(baseHTMLTemplate))
	layoutText = texttemplate.Must(texttemplate.New("layoutText").Parse(plainTextTemplate))
)

// brandedLayout renders the notification and reset-password messages both
// transports share.
type brandedLayout struct {
	appName    string
	appBaseURL string
}

func (l brandedLayout) notify(subject, body, ctaText, ctaURL string) (string, string, error) {
	return renderLayout(EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
		AppName:   l.appName,
		Year:      time.Now().Year(),
	})
}

func (l brandedLayout) resetPassword(token string) (string, string, string, error) {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(l.appBaseURL, "/"), url.QueryEscape(token))
	subject := "Reset your password"

	html, text, err := renderLayout(EmailData{
		Title:     subject,
		Intro:     "We received a request to reset your password. Use the button below to choose a new one. If you did not ask for this, ignore this email.",
		ButtonURL: link,
		ButtonTxt: "Reset Password",
		AppName:   l.appName,
		Year:      time.Now().Year(),
	})
	return subject, html, text, err
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f5f7;font-family:-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;color:#1f2933;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="padding:32px 12px;">
    <tr><td align="center">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="max-width:600px;background:#ffffff;border-radius:12px;overflow:hidden;">
        <tr><td style="padding:24px 32px;background:#0b3d91;color:#ffffff;font-size:20px;font-weight:700;letter-spacing:.5px;">{{.AppName}}</td></tr>
        <tr><td style="padding:32px;">
          <h1 style="margin:0 0 16px;font-size:24px;">{{.Title}}</h1>
          <p style="margin:0 0 20px;line-height:1.6;color:#3e4c59;">{{.Intro}}</p>
          {{if .ButtonURL}}
          <p style="margin:28px 0;">
            <a href="{{.ButtonURL}}" style="display:inline-block;padding:14px 28px;background:#0b3d91;color:#ffffff;text-decoration:none;border-radius:8px;font-weight:600;">{{.ButtonTxt}}</a>
          </p>
          <p style="margin:0;font-size:13px;color:#7b8794;">If the button does not work, paste this link into your browser:<br>
            <a href="{{.ButtonURL}}" style="color:#0b3d91;word-break:break-all;">{{.ButtonURL}}</a>
          </p>
          {{end}}
        </td></tr>
        <tr><td style="padding:20px 32px;font-size:12px;color:#9aa5b1;text-align:center;border-top:1px solid #e4e7eb;">&copy; {{.Year}} {{.AppName}}</td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
-- {{.AppName}} (c) {{.Year}}
`

func renderLayout(data EmailData) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := layoutHTML.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := layoutText.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// ------------------- SMTP -------------------

type smtpMailService struct {
	cfg    SMTPConfig
	layout brandedLayout
}

func NewSMTPMailService(cfg SMTPConfig) (IMailService, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	return &smtpMailService{
		cfg:    cfg,
		layout: brandedLayout{appName: cfg.AppName, appBaseURL: cfg.AppBaseURL},
	}, nil
}

func (s *smtpMailService) SendMailToNotifyUser(
	to, subject, body, ctaText, ctaURL string,
) error {
	html, text, err := s.layout.notify(subject, body, ctaText, ctaURL)
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

func (s *smtpMailService) SendMailToResetPassword(to, token string) error {
	subject, html, text, err := s.layout.resetPassword(token)
	if err != nil {
		return err
	}
	return s.send(to, subject, html, text)
}

func (s *smtpMailService) SendRendered(to, subject, htmlBody, textBody string) error {
	return s.send(to, subject, htmlBody, textBody)
}

func (s *smtpMailService) send(to, subject, htmlBody, textBody string) error {
	msg := buildMIMEMessage(s.formatFromHeader(), to, subject, htmlBody, textBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		conn, err = tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, tlsCfg)
	} else {
		conn, err = (&net.Dialer{Timeout: 10 * time.Second}).Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(auth); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("UTF-8", name), s.cfg.From)
}

func buildMIMEMessage(from, to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

// ------------------- Brevo -------------------

type brevoMailService struct {
	client   *brevo.APIClient
	from     string
	fromName string
	layout   brandedLayout
	timeout  time.Duration
}

func newBrevoMailService(apiKey, from, fromName string, layout brandedLayout) *brevoMailService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &brevoMailService{
		client:   brevo.NewAPIClient(cfg),
		from:     from,
		fromName: fromName,
		layout:   layout,
		timeout:  15 * time.Second,
	}
}

func (b *brevoMailService) SendMailToNotifyUser(
	to, subject, body, ctaText, ctaURL string,
) error {
	html, text, err := b.layout.notify(subject, body, ctaText, ctaURL)
	if err != nil {
		return err
	}
	return b.SendRendered(to, subject, html, text)
}

func (b *brevoMailService) SendMailToResetPassword(to, token string) error {
	subject, html, text, err := b.layout.resetPassword(token)
	if err != nil {
		return err
	}
	return b.SendRendered(to, subject, html, text)
}

func (b *brevoMailService) SendRendered(to, subject, htmlBody, textBody string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	email := brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Name: b.fromName, Email: b.from},
		To:          []brevo.SendSmtpEmailTo{{Email: to}},
		Subject:     subject,
		HtmlContent: htmlBody,
		TextContent: textBody,
	}

	result, _, err := b.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"to":         to,
		"message_id": result.MessageId,
	}).Debug("brevo email accepted")
	return nil
}
