package infra

import (
	"fmt"
	"net/smtp"
	"strings"

	"retailpos/internal/config"
	"retailpos/internal/dto"

	"github.com/jordan-wright/email"
)

// Mailer sends operational mail through the configured SMTP relay.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPUser
	if from == "" {
		from = cfg.SystemOwnerEmail
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     from,
	}
}

// Enabled is false when no SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// SendLowStockAlert mails the list of products that fell below the threshold.
func (m *Mailer) SendLowStockAlert(to string, alert dto.LowStockAlert) error {
	e := LowStockEmail(m.from, to, alert)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send low stock alert: %w", err)
	}
	return nil
}

// LowStockEmail renders the alert without sending it.
func LowStockEmail(from, to string, alert dto.LowStockAlert) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("[retailpos] %d product(s) below stock threshold", len(alert.Products))

	var b strings.Builder
	fmt.Fprintf(&b, "Branch: %s\n", alert.BranchID)
	if alert.OrderID != "" {
		fmt.Fprintf(&b, "Triggered by order: %s\n", alert.OrderID)
	}
	fmt.Fprintf(&b, "Threshold: %d\n\n", alert.Threshold)
	for _, p := range alert.Products {
		fmt.Fprintf(&b, "- %s (%s): %d left\n", p.Name, p.SKU, p.StockQuantity)
	}
	e.Text = []byte(b.String())
	return e
}
