// Package mailingservices holds the Mailgun client used for transactional
// email.
package mailingservices

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

// Init configures the Mailgun client from the loaded config. A missing API
// key leaves the client nil and sends become no-ops, which keeps local
// development working without credentials.
func (m *Mailgun) Init(conf *config.Config) {
	if conf.MailgunApiKey == "" || conf.MgDomain == "" {
		log.Println("mailgun not configured, emails will be skipped")
		return
	}
	m.Client = mailgun.NewMailgun(conf.MgDomain, conf.MailgunApiKey)
	m.From = conf.MgEmailFrom
	if m.From == "" {
		m.From = fmt.Sprintf("CareScribe <no-reply@%s>", conf.MgDomain)
	}
}

const welcomeBody = `Hi %s,

Thanks for joining CareScribe. You can now record incident reports with the
guided quick-report flow, and your drafts are saved automatically as you go.

The CareScribe team`

func (m *Mailgun) SendWelcomeMessage(recipient, fullname string) error {
	if m.Client == nil {
		return nil
	}
	if fullname == "" {
		fullname = "there"
	}

	message := m.Client.NewMessage(m.From, "Welcome to CareScribe", fmt.Sprintf(welcomeBody, fullname), recipient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("welcome email queued for %s (id %s)", recipient, id)
	return nil
}
