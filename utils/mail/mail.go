package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/quickstay/booking/config"
	"github.com/quickstay/booking/logger"
)

const bookingConfirmationTemplate = "templates/email/booking_confirmation.html"

var templates *template.Template

// InitTemplates parses the embedded email templates. Called once from main.
func InitTemplates(files fs.FS) {
	templates = template.Must(template.ParseFS(files, "templates/email/*.html"))
}

// BookingConfirmation is the data rendered into the confirmation email.
type BookingConfirmation struct {
	UserName     string
	BookingID    string
	HotelName    string
	RoomType     string
	Guests       int
	CheckInDate  string
	CheckOutDate string
	Currency     string
	TotalPrice   float64
	Year         int
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	currency string
}

// NewMailerFromEnv builds a Mailer from SMTP_* settings.
func NewMailerFromEnv() (*Mailer, error) {
	port, err := strconv.Atoi(config.Getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %w", err)
	}

	return &Mailer{
		host:     config.Getenv("SMTP_HOST", ""),
		port:     port,
		username: config.Getenv("SMTP_USERNAME", ""),
		password: config.Getenv("SMTP_PASSWORD", ""),
		from:     config.Getenv("FROM_EMAIL", ""),
		currency: config.Getenv("CURRENCY", "$"),
	}, nil
}

// Currency returns the configured currency symbol.
func (m *Mailer) Currency() string {
	return m.currency
}

// RenderBookingConfirmation fills the confirmation template.
func RenderBookingConfirmation(data BookingConfirmation) (string, error) {
	if templates == nil {
		return "", fmt.Errorf("email templates not initialized")
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "booking_confirmation.html", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", bookingConfirmationTemplate, err)
	}
	return body.String(), nil
}

// SendBookingConfirmation renders and sends the confirmation email.
func (m *Mailer) SendBookingConfirmation(toEmail string, data BookingConfirmation) error {
	if data.Currency == "" {
		data.Currency = m.currency
	}

	body, err := RenderBookingConfirmation(data)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to render booking confirmation: %v", err)
		return err
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", m.from)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", "Booking Confirmation")
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         m.host,
	}

	logger.InfoLogger.Printf("Attempting to connect to SMTP server: %s:%d", m.host, m.port)

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Printf("Booking confirmation sent to %s", toEmail)
	return nil
}
