package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/hirelane/hirelane-backend/internal/models"
	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<h2>Thanks for your purchase!</h2>
<p>Your payment of ${{printf "%.2f" .AmountDollars}} for the {{.Tier}} package is confirmed.</p>
<p>{{.CreditCount}} posting credits were added to your account. They are valid until {{.ExpiresAt}}.</p>
<p>&copy; {{.Year}} Hirelane</p>
`))

type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewEmailService(apiKey, from, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
		logger:   logger,
	}
}

// SendPurchaseReceipt emails the buyer after a purchase is fulfilled.
func (s *EmailService) SendPurchaseReceipt(address string, purchase *models.Purchase) error {
	templateData := map[string]interface{}{
		"Tier":          purchase.Tier,
		"AmountDollars": float64(purchase.AmountCents) / 100,
		"CreditCount":   purchase.TotalCredits(),
		"ExpiresAt":     purchase.ExpiresAt.Format("January 2, 2006"),
		"Year":          time.Now().Year(),
	}

	var html bytes.Buffer
	if err := receiptTemplate.Execute(&html, templateData); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{address},
		Subject: fmt.Sprintf("Your Hirelane receipt - %s package", purchase.Tier),
		Html:    html.String(),
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		return err
	}

	s.logger.Info("purchase receipt sent",
		zap.Uint("purchase_id", purchase.ID),
		zap.String("email_id", resp.Id),
	)
	return nil
}
