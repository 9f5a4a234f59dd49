package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": func(amount float64, currency string) string { return fmt.Sprintf("%.2f %s", amount, currency) },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
}).ParseFS(templateFS, "templates/*.html"))

// OTPData fills the password reset template.
type OTPData struct {
	Name     string
	Code     string
	ValidFor time.Duration
	AppName  string
}

// WelcomeData fills the welcome template sent to new staff and clients.
type WelcomeData struct {
	Name    string
	Role    string
	AppName string
}

// ReceiptData fills the payment receipt template.
type ReceiptData struct {
	AppName       string
	ClientName    string
	InvoiceNumber string
	Description   string
	Type          string
	Method        string
	Status        string
	Amount        float64
	Currency      string
	PaidAt        time.Time
	Refunded      bool
	RefundAmount  float64
}

func render(name, to, subject string, data any) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

func OTPMessage(to string, data OTPData) (Message, error) {
	return render("otp.html", to, data.AppName+": password reset code", data)
}

func WelcomeMessage(to string, data WelcomeData) (Message, error) {
	return render("welcome.html", to, "Welcome to "+data.AppName, data)
}

func ReceiptMessage(to string, data ReceiptData) (Message, error) {
	return render("receipt.html", to, fmt.Sprintf("%s: receipt %s", data.AppName, data.InvoiceNumber), data)
}
