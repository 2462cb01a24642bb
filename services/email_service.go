package services

import (
	"fmt"
	"rentkart_server/database"
	"rentkart_server/structs"
	"rentkart_server/structs/tables"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

var (
	client     *resend.Client
	clientOnce = sync.Once{}
)

type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	client *resend.Client
	db     *database.DB
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config, db *database.DB) *EmailService {
	return &EmailService{
		logger: logger,
		cfg:    cfg,
		db:     db,
		client: getEmailClient(cfg.Email.ApiKey),
	}
}

func getEmailClient(apiKey string) *resend.Client {
	clientOnce.Do(func() {
		client = resend.NewClient(apiKey)
	})
	return client
}

func (es *EmailService) SendEmail(to []string, subject string, body string) error {
	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      to,
		Html:    body,
		Subject: subject,
	}

	_, err := client.Emails.Send(params)
	if err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to))
		return err
	}

	return nil
}

// SendVerificationCodeEmail mails a one-time signup code to the address
func (es *EmailService) SendVerificationCodeEmail(email, code string, expiresAt time.Time) error {
	emailBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #1A73E8; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.code { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; padding: 20px; background-color: white; border-radius: 5px; margin: 20px 0; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>Verify your email address</h1>
				</div>
				<div class="content">
					<p>Use the following code to finish creating your Rentkart account:</p>
					<div class="code">%s</div>
					<p>This code expires in %.0f minutes.</p>
					<p>If you did not start a signup, you can ignore this email.</p>
				</div>
				<div class="footer">
					<p>Rentkart | Rent gear, not regret</p>
				</div>
			</div>
		</body>
		</html>
	`, code, time.Until(expiresAt).Minutes())

	err := es.SendEmail([]string{email}, "Your Rentkart verification code", emailBody)
	if err != nil {
		es.logger.Error("Failed to send verification code email", gecho.Field("error", err), gecho.Field("to", email))
		return err
	}

	return nil
}

// SendPasswordResetEmail mails a recovery link holding a short-lived token
func (es *EmailService) SendPasswordResetEmail(user *tables.User, token string, expiresAt time.Time) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", es.cfg.Server.FrontendURL, token)

	emailBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #1A73E8; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.button { display: inline-block; padding: 15px 30px; background-color: #1A73E8; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>Reset your password</h1>
				</div>
				<div class="content">
					<p>Dear %s,</p>
					<p>Someone requested a password reset for your account. Click the button below to choose a new password:</p>
					<p style="text-align: center;">
						<a href="%s" class="button">Reset Password</a>
					</p>
					<p>This link expires in %.0f minutes.</p>
					<p>Link not working? Copy and paste the following URL into your browser:</p>
					<p style="word-break: break-all;">%s</p>
					<p>If you did not request this, you can safely ignore this email.</p>
				</div>
				<div class="footer">
					<p>Rentkart | Rent gear, not regret</p>
				</div>
			</div>
		</body>
		</html>
	`, user.Name, resetLink, time.Until(expiresAt).Minutes(), resetLink)

	err := es.SendEmail([]string{user.Email}, "Reset your Rentkart password", emailBody)
	if err != nil {
		es.logger.Error("Failed to send password reset email", gecho.Field("error", err), gecho.Field("to", user.Email))
		return err
	}

	return nil
}

// SendOrderConfirmationEmail sends the rental confirmation with the full charge breakdown
func (es *EmailService) SendOrderConfirmationEmail(user *tables.User, order *tables.RentalOrder) error {
	var itemsBuilder strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&itemsBuilder, "<li>%dx %s - %s</li>", item.Quantity, item.ProductName, formatCents(item.UnitPriceCents*int64(item.Quantity)))
	}

	emailBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #1A73E8; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.order-details { background-color: white; padding: 15px; margin: 15px 0; border-radius: 5px; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
				ul { list-style-type: none; padding: 0; }
				li { padding: 5px 0; border-bottom: 1px solid #eee; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>Your rental is confirmed!</h1>
				</div>
				<div class="content">
					<p>Dear %s,</p>
					<p>Your rental order has been confirmed. Pick up your items on <strong>%s</strong> and return them by <strong>%s</strong>.</p>

					<div class="order-details">
						<h3>Order Number: <strong>%s</strong></h3>
						<h4>Items (per rental day):</h4>
						<ul>%s</ul>
						<p>Subtotal: %s</p>
						<p>GST: %s</p>
						<p>Insurance: %s</p>
						<p><strong>Total: %s</strong></p>
					</div>

					<p>Late returns are billed per started hour, so plan your return trip with some margin.</p>
					<p>Questions? Contact us at %s</p>
				</div>
				<div class="footer">
					<p>Rentkart | Rent gear, not regret</p>
				</div>
			</div>
		</body>
		</html>
	`, user.Name,
		order.PickupDate.Format("Monday, 2 January 2006"),
		order.ReturnDate.Format("Monday, 2 January 2006"),
		order.OrderNumber,
		itemsBuilder.String(),
		formatCents(order.SubtotalCents),
		formatCents(order.GSTCents),
		formatCents(order.InsuranceCents),
		formatCents(order.TotalCents),
		es.cfg.Email.SupportEmail)

	subject := fmt.Sprintf("Rental confirmation %s", order.OrderNumber)

	return es.SendEmail([]string{user.Email}, subject, emailBody)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("₹%.2f", float64(cents)/100)
}
