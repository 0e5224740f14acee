package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindRegistration: {
		subject: "Welcome to Burrrgerr!",
		body: template.Must(template.New("registration").Parse(
			`<h2>Welcome to Burrrgerr! 🍔</h2>
<p>Hi {{.name}},</p>
<p>Thank you for registering with us. Get ready for the best burger experience!</p>`)),
	},
	KindOrderConfirmation: {
		subject: "Order Confirmation",
		body: template.Must(template.New("order-confirmation").Parse(
			`<h2>Order Confirmed! 🎉</h2>
<p>Hi {{.customerName}},</p>
<p>Your order #{{.orderId}} has been confirmed.</p>
<p>Total Amount: ₹{{.totalAmount}}</p>
<p>Estimated Delivery: {{.estimatedDelivery}}</p>`)),
	},
}

// Render fills the template for msg.Kind.
func Render(msg Message) (Email, error) {
	tpl, ok := templates[msg.Kind]
	if !ok {
		return Email{}, fmt.Errorf("unknown email kind %q", msg.Kind)
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, msg.Data); err != nil {
		return Email{}, fmt.Errorf("render %s email: %w", msg.Kind, err)
	}
	return Email{To: msg.To, Subject: tpl.subject, HTML: buf.String()}, nil
}
