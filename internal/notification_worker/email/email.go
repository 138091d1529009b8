// Package email renders and delivers the transactional emails that accompany
// in-app notifications.
package email

import (
	"fmt"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
)

// Type selects an email template
type Type string

const (
	TypePaymentReceived      Type = "payment_received"
	TypePaymentSent          Type = "payment_sent"
	TypeTransactionCompleted Type = "transaction_completed"
	TypeReceiptReady         Type = "receipt_ready"
	TypeWelcome              Type = "welcome"
)

// TypeForNotification maps a notification type to the email template that
// accompanies it. Notification types without an email counterpart are
// in-app only.
func TypeForNotification(t notification.Type) (Type, bool) {
	switch t {
	case notification.TypePaymentReceived:
		return TypePaymentReceived, true
	case notification.TypePaymentSent:
		return TypePaymentSent, true
	case notification.TypeTransactionCompleted:
		return TypeTransactionCompleted, true
	case notification.TypeReceiptReady:
		return TypeReceiptReady, true
	}
	return "", false
}

// Data carries the values the templates interpolate
type Data struct {
	Name          string
	TransactionID string
	Message       string
}

// Content is a rendered email
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Render builds the email content for the given template type
func Render(t Type, data Data) (Content, error) {
	switch t {
	case TypePaymentReceived:
		return Content{
			Subject: "Payment Received - Pay.Qudmeet",
			Text:    fmt.Sprintf("Hello %s,\n\n%s\n\nTransaction ID: %s\n\nThank you,\nPay.Qudmeet Team", data.Name, data.Message, data.TransactionID),
			HTML:    fmt.Sprintf("<h1>Payment Received</h1><p>Hello %s,</p><p>%s</p><p>Transaction ID: <strong>%s</strong></p><p>Thank you,<br>Pay.Qudmeet Team</p>", data.Name, data.Message, data.TransactionID),
		}, nil
	case TypePaymentSent:
		return Content{
			Subject: "Payment Sent - Pay.Qudmeet",
			Text:    fmt.Sprintf("Hello %s,\n\n%s\n\nTransaction ID: %s\n\nThank you,\nPay.Qudmeet Team", data.Name, data.Message, data.TransactionID),
			HTML:    fmt.Sprintf("<h1>Payment Sent</h1><p>Hello %s,</p><p>%s</p><p>Transaction ID: <strong>%s</strong></p><p>Thank you,<br>Pay.Qudmeet Team</p>", data.Name, data.Message, data.TransactionID),
		}, nil
	case TypeTransactionCompleted:
		return Content{
			Subject: "Transaction Completed - Pay.Qudmeet",
			Text:    fmt.Sprintf("Hello %s,\n\n%s\n\nTransaction ID: %s\n\nThank you for using our service.\n\nPay.Qudmeet Team", data.Name, data.Message, data.TransactionID),
			HTML:    fmt.Sprintf("<h1>Transaction Completed</h1><p>Hello %s,</p><p>%s</p><p>Transaction ID: <strong>%s</strong></p><p>Thank you for using our service.</p><p>Pay.Qudmeet Team</p>", data.Name, data.Message, data.TransactionID),
		}, nil
	case TypeReceiptReady:
		return Content{
			Subject: "Your Receipt is Ready - Pay.Qudmeet",
			Text:    fmt.Sprintf("Hello %s,\n\nYour receipt for transaction ID %s is ready. You can view and download it from your account.\n\nThank you,\nPay.Qudmeet Team", data.Name, data.TransactionID),
			HTML:    fmt.Sprintf("<h1>Receipt Ready</h1><p>Hello %s,</p><p>Your receipt for transaction ID <strong>%s</strong> is ready. You can view and download it from your account.</p><p>Thank you,<br>Pay.Qudmeet Team</p>", data.Name, data.TransactionID),
		}, nil
	case TypeWelcome:
		return Content{
			Subject: "Welcome to Pay.Qudmeet!",
			Text:    fmt.Sprintf("Hello %s,\n\nWelcome to Pay.Qudmeet! We're excited to have you on board.\n\nWith our platform, you can securely exchange currencies between Nigeria and India without any hassle.\n\nIf you have any questions, feel free to contact us.\n\nBest regards,\nPay.Qudmeet Team", data.Name),
			HTML:    fmt.Sprintf("<h1>Welcome to Pay.Qudmeet!</h1><p>Hello %s,</p><p>Welcome to Pay.Qudmeet! We're excited to have you on board.</p><p>With our platform, you can securely exchange currencies between Nigeria and India without any hassle.</p><p>If you have any questions, feel free to contact us.</p><p>Best regards,<br>Pay.Qudmeet Team</p>", data.Name),
		}, nil
	}
	return Content{}, fmt.Errorf("unknown email type: %s", t)
}
