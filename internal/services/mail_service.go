package services

import (
	"bytes"
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

	"go.uber.org/zap"

	"gladiadores/config"
)

type IMailService interface {
	SendNotification(to, subject, body, ctaText, ctaURL string) error
	SendPasswordReset(to, token string) error
	SendWelcome(to, name, inviteURL string) error
}

// SMTPConfig holds SMTP and branding settings.
type SMTPConfig struct {
	config.MailConfig

	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	textTpl *texttemplate.Template
	now     func() time.Time
}

// NewMailService returns a no-op sender when SMTP_HOST is empty so local runs never dial out.
func NewMailService(cfg SMTPConfig, log *zap.Logger) IMailService {
	if cfg.Host == "" {
		log.Warn("SMTP_HOST not set, outgoing mail disabled")
		return &noopMailService{log: log}
	}
	return &smtpMailService{
		cfg:     cfg,
		htmlTpl: template.Must(template.New("html").Parse(baseHTMLTemplate)),
		textTpl: texttemplate.Must(texttemplate.New("text").Parse(plainTextTemplate)),
		now:     time.Now,
	}
}

// ------------------- Public API -------------------

func (s *smtpMailService) SendNotification(to, subject, body, ctaText, ctaURL string) error {
	return s.deliver(to, EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
	})
}

func (s *smtpMailService) SendPasswordReset(to, token string) error {
	link := fmt.Sprintf("%s/auth/reset?token=%s", strings.TrimRight(s.cfg.AppBaseURL, "/"), url.QueryEscape(token))
	return s.deliver(to, EmailData{
		Title:     "Restablece tu contraseña",
		Intro:     "Recibimos una solicitud para restablecer tu contraseña. Si no fuiste tú, ignora este correo.",
		ButtonURL: link,
		ButtonTxt: "Restablecer contraseña",
	})
}

func (s *smtpMailService) SendWelcome(to, name, inviteURL string) error {
	return s.deliver(to, EmailData{
		Title:     fmt.Sprintf("¡Bienvenido, %s!", name),
		Intro:     "Ya eres parte de los Gladiadores. Completa la Escalera de Bronce y comparte tu enlace para subir de nivel.",
		ButtonURL: inviteURL,
		ButtonTxt: "Mi enlace de invitación",
	})
}

// ------------------- Rendering -------------------

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

const baseHTMLTemplate = `<!doctype html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #0b1220; color: #f8fafc; font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; }
    .container { max-width: 560px; margin: 32px auto; background: #111a2e; border-radius: 14px; overflow: hidden; }
    .header { padding: 24px 28px; border-bottom: 3px solid #c8a24a; font-weight: 700; font-size: 20px; color: #c8a24a; text-transform: uppercase; }
    .hero { padding: 32px 28px; }
    h1 { margin: 0 0 14px; font-size: 24px; }
    p { margin: 0 0 18px; line-height: 1.6; color: #cbd5e1; }
    .btn { display: inline-block; padding: 14px 28px; background: #c8a24a; color: #0b1220 !important; text-decoration: none; border-radius: 10px; font-weight: 700; }
    .muted { color: #94a3b8; font-size: 12px; word-break: break-all; }
    .footer { padding: 18px 28px; color: #64748b; font-size: 12px; text-align: center; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">{{.AppName}}</div>
    <div class="hero">
      <h1>{{.Title}}</h1>
      <p>{{.Intro}}</p>
      {{if .ButtonURL}}
        <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
        <p class="muted">Si el botón no funciona, copia este enlace: {{.ButtonURL}}</p>
      {{end}}
    </div>
    <div class="footer">© {{.Year}} {{.AppName}}</div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
{{.AppName}} (c) {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	data.AppName = s.cfg.AppName
	data.Year = s.now().Year()

	var hb, tb bytes.Buffer
	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func (s *smtpMailService) deliver(to string, data EmailData) error {
	html, text, err := s.renderEmail(data)
	if err != nil {
		return err
	}
	return s.send(to, s.buildMessage(to, data.Title, html, text))
}

// ------------------- SMTP Send -------------------

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	now := s.now()
	boundary := fmt.Sprintf("alt_%d", now.UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", now.Format(time.RFC1123Z))
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

func (s *smtpMailService) send(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.UseSSL {
		// SMTPS (implicit TLS, usually port 465)
		conn, err = tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, tlsCfg)
	} else {
		conn, err = (&net.Dialer{Timeout: 10 * time.Second}).Dial("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
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
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
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
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), s.cfg.From)
}

type noopMailService struct {
	log *zap.Logger
}

func (n *noopMailService) SendNotification(to, subject, _, _, _ string) error {
	n.log.Debug("mail disabled, notification dropped", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (n *noopMailService) SendPasswordReset(to, _ string) error {
	n.log.Debug("mail disabled, reset mail dropped", zap.String("to", to))
	return nil
}

func (n *noopMailService) SendWelcome(to, _, _ string) error {
	n.log.Debug("mail disabled, welcome mail dropped", zap.String("to", to))
	return nil
}
