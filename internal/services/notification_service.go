package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/constants"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

var purchaseEmailTemplate = template.Must(template.New("purchase").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Product}}</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f8f9fa; margin: 0; padding: 20px; }
  .container { max-width: 500px; margin: auto; background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; overflow: hidden; }
  .header { background-color: #1f1f1f; color: white; padding: 20px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .content { padding: 30px; text-align: left; }
  .button { display: inline-block; padding: 12px 20px; background: #1f1f1f; color: #ffffff; border-radius: 6px; text-decoration: none; }
  .footer { background-color: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #6c757d; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Product}}</h1>
    </div>
    <div class="content">
      <p>{{.Greeting}},</p>
      <p>Gracias por tu compra. Ya tienes acceso a todas las tarjetas.</p>
      <p>Entra con tu email en la app; te enviaremos un enlace para iniciar sesión, sin contraseñas.</p>
      <p><a class="button" href="{{.AppURL}}/app">Abrir la app</a></p>
      {{if .HasAttachment}}<p>Te adjuntamos también la versión en PDF.</p>{{end}}
    </div>
    <div class="footer">
      © {{.Year}} {{.Product}}
    </div>
  </div>
</body>
</html>`))

type purchaseEmailData struct {
	Product       string
	Greeting      string
	AppURL        string
	HasAttachment bool
	Year          int
}

// EmailSender is the subset of *sendgrid.Client used here.
type EmailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type NotificationService interface {
	SendPurchaseConfirmation(ctx context.Context, email, displayName string) Result
}

type notificationService struct {
	cfg    *config.Config
	sender EmailSender
}

func NewNotificationService(cfg *config.Config) NotificationService {
	return NewNotificationServiceWithSender(cfg, sendgrid.NewSendClient(cfg.SendgridAPIKey))
}

func NewNotificationServiceWithSender(cfg *config.Config, sender EmailSender) NotificationService {
	return &notificationService{cfg: cfg, sender: sender}
}

// SendPurchaseConfirmation never returns an error and never panics: any
// failure ends up in the Result and in the log.
func (s *notificationService) SendPurchaseConfirmation(ctx context.Context, email, displayName string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failed(fmt.Errorf("purchase email panicked: %v", r))
		}
		if res.Err != nil {
			utils.Logger.WithError(res.Err).Warnf("Purchase confirmation email not sent to %s", utils.MaskEmail(email))
		}
	}()

	if err := s.cfg.RequireEmail(); err != nil {
		return Failed(err)
	}

	msg, err := s.buildMessage(email, displayName)
	if err != nil {
		return Failed(err)
	}

	resp, err := s.sender.Send(msg)
	if err != nil {
		return Failed(fmt.Errorf("%w: sendgrid: %v", utils.ErrExternalServiceFailure, err))
	}
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return Failed(fmt.Errorf("%w: sendgrid status %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body))
	}

	utils.Logger.Infof("Purchase confirmation email sent to %s", utils.MaskEmail(email))
	return Succeeded()
}

func (s *notificationService) buildMessage(toAddr, displayName string) (*mail.SGMailV3, error) {
	attachment := s.loadAttachment()

	var html bytes.Buffer
	err := purchaseEmailTemplate.Execute(&html, purchaseEmailData{
		Product:       utils.ProductName,
		Greeting:      Greeting(displayName),
		AppURL:        s.cfg.AppUrl,
		HasAttachment: attachment != nil,
		Year:          time.Now().Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("render purchase email: %w", err)
	}

	from := mail.NewEmail(s.cfg.SendgridFromName, s.cfg.SendgridFromEmail)
	to := mail.NewEmail(displayName, toAddr)
	plainText := fmt.Sprintf(
		"%s,\n\nGracias por tu compra. Entra en %s/app con tu email para acceder.\n\n%s",
		Greeting(displayName), s.cfg.AppUrl, utils.ProductName,
	)

	msg := mail.NewSingleEmail(from, constants.PurchaseEmailSubject, to, plainText, html.String())
	if attachment != nil {
		msg.AddAttachment(attachment)
	}
	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg, nil
}

// loadAttachment returns nil when no file is configured or it cannot be read;
// the email goes out without it.
func (s *notificationService) loadAttachment() *mail.Attachment {
	if s.cfg.PurchaseAttachmentPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.cfg.PurchaseAttachmentPath)
	if err != nil {
		utils.Logger.WithError(err).Warn("Purchase attachment unavailable, sending without it")
		return nil
	}

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(data))
	a.SetType(constants.PurchaseAttachmentMIMEType)
	a.SetFilename(constants.PurchaseAttachmentFilename)
	a.SetDisposition("attachment")
	return a
}

// Greeting uses the first word of the customer's name, or a generic opener.
func Greeting(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return constants.GenericGreeting
	}
	return constants.GenericGreeting + " " + fields[0]
}
