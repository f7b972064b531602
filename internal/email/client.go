package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

// Client sends transactional mail for the front desk.
type Client struct {
	host      string
	port      int
	user      string
	password  string
	fromName  string
	fromEmail string
}

// NewClient creates a new instance of the email client
func NewClient(host, portStr, user, password, fromName, fromEmail string) (*Client, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port: %w", err)
	}

	return &Client{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}, nil
}

// SendEmail sends a single HTML email.
func (c *Client) SendEmail(to, subject, htmlBody string) error {
	m := mail.NewMsg()

	if err := m.From(fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	log.Printf("SMTP: connecting to %s:%d as user=%s", c.host, c.port, c.user)

	client, err := mail.NewClient(c.host,
		mail.WithPort(c.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.user),
		mail.WithPassword(c.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(&tls.Config{
			ServerName: c.host,
		}),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client (host=%s port=%d): %w", c.host, c.port, err)
	}

	if err := client.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email (host=%s port=%d): %w", c.host, c.port, err)
	}

	return nil
}

// RoomInfo carries one room line of a booking email.
type RoomInfo struct {
	Number   string
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
	Amount   float64
}

// BookingInfo carries the booking data rendered into confirmation mail.
type BookingInfo struct {
	GuestName        string
	GuestEmail       string
	ConfirmationCode string
	TotalAmount      float64
	Rooms            []RoomInfo
}

// SendBookingConfirmation sends the booking confirmation email.
func (c *Client) SendBookingConfirmation(info BookingInfo) error {
	subject := fmt.Sprintf("Booking confirmation - %s", c.fromName)
	if info.ConfirmationCode != "" {
		subject = fmt.Sprintf("Booking confirmation %s - %s", info.ConfirmationCode, c.fromName)
	}
	return c.SendEmail(info.GuestEmail, subject, buildConfirmationHTML(info))
}

// SendCancellationNotice sends a cancellation notice for one reservation.
func (c *Client) SendCancellationNotice(info BookingInfo) error {
	subject := fmt.Sprintf("Reservation cancelled - %s", c.fromName)
	return c.SendEmail(info.GuestEmail, subject, buildCancellationHTML(info))
}

func buildConfirmationHTML(info BookingInfo) string {
	roomsHTML := ""
	for _, room := range info.Rooms {
		roomsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #e0e0e0;">
					<strong>Room %s</strong><br>
					%s &rarr; %s (%d nights)
				</td>
				<td style="padding: 12px; border-bottom: 1px solid #e0e0e0; text-align: right;">
					%.2f
				</td>
			</tr>`,
			room.Number,
			room.CheckIn.Format("2006-01-02"),
			room.CheckOut.Format("2006-01-02"),
			room.Nights,
			room.Amount,
		)
	}

	code := ""
	if info.ConfirmationCode != "" {
		code = fmt.Sprintf(`<p>Your confirmation code is <strong>%s</strong>.</p>`, info.ConfirmationCode)
	}

	return fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; color: #333;">
		<h2>Thank you for your booking, %s!</h2>
		%s
		<table style="width: 100%%; border-collapse: collapse;">
			%s
			<tr>
				<td style="padding: 12px;"><strong>Total</strong></td>
				<td style="padding: 12px; text-align: right;"><strong>%.2f</strong></td>
			</tr>
		</table>
		<p>We look forward to welcoming you.</p>
	</body>
	</html>`, info.GuestName, code, roomsHTML, info.TotalAmount)
}

func buildCancellationHTML(info BookingInfo) string {
	return fmt.Sprintf(`
	<html>
	<body style="font-family: Arial, sans-serif; color: #333;">
		<h2>Reservation cancelled</h2>
		<p>Dear %s, your reservation has been cancelled.</p>
		<p>If this was not requested by you, please contact the front desk.</p>
	</body>
	</html>`, info.GuestName)
}
