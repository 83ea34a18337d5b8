package email

import "context"

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SendOrderConfirmation emails the buyer after a successful payment.
func SendOrderConfirmation(ctx context.Context, svc Sender, buyerEmail, itemName, orderID, total string) error {
	subject := "Order Confirmation"
	textBody := "Thanks for your purchase!\n\nItem: " + itemName + "\nOrder: #" + orderID + "\nTotal: $" + total + "\n"

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Order Confirmation</h2>
    <p>Thanks for your purchase!</p>
    <p><strong>Item:</strong> ` + itemName + `</p>
    <p><strong>Order:</strong> #` + orderID + `</p>
    <p><strong>Total:</strong> $` + total + `</p>
  </body>
</html>
`

	return svc.Send(ctx, Message{
		To:      buyerEmail,
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	})
}

// SendRefundNotice emails the buyer after a refund is issued.
func SendRefundNotice(ctx context.Context, svc Sender, buyerEmail, orderID, amount string) error {
	subject := "Refund Issued"
	textBody := "A refund of $" + amount + " has been issued for order #" + orderID + ".\n"

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Refund Issued</h2>
    <p>A refund of <strong>$` + amount + `</strong> has been issued for order <strong>#` + orderID + `</strong>.</p>
  </body>
</html>
`

	return svc.Send(ctx, Message{
		To:      buyerEmail,
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	})
}
