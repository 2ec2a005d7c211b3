package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Client отправляет уведомления о бронированиях на webhook
// Повторов нет: ошибка возвращается вызывающему, который её логирует
type Client struct {
	webhookURL string
	secret     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(webhookURL, secret string, timeout time.Duration, log Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		secret:     secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NotifyConfirmed отправляет подтверждение бронирования
func (c *Client) NotifyConfirmed(ctx context.Context, booking *domain.Booking) error {
	return c.Send(ctx, newNotification(EventBookingConfirmed, booking, ""))
}

// NotifyReminder отправляет напоминание о предстоящей сессии
func (c *Client) NotifyReminder(ctx context.Context, booking *domain.Booking, kind string) error {
	return c.Send(ctx, newNotification(EventBookingReminder, booking, kind))
}

// NotifyCancelled отправляет уведомление об отмене
func (c *Client) NotifyCancelled(ctx context.Context, booking *domain.Booking) error {
	return c.Send(ctx, newNotification(EventBookingCancelled, booking, ""))
}

// Send выполняет POST на webhook
func (c *Client) Send(ctx context.Context, n Notification) error {
	if c.webhookURL == "" {
		return ErrDisabled
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal notification: %v", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("notifier: %s for booking id=%s failed: %v", n.Event, n.BookingID, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrDeliveryFailed, resp.StatusCode, string(msg))
	}

	c.log.Info("notifier: %s sent for booking id=%s", n.Event, n.BookingID)
	return nil
}

func newNotification(event EventType, b *domain.Booking, reminder string) Notification {
	return Notification{
		Event:         event,
		BookingID:     b.ID.String(),
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		SessionType:   string(b.SessionType),
		StartTime:     b.StartTime.UTC(),
		EndTime:       b.EndTime.UTC(),
		TimeZone:      b.TimeZone,
		Reminder:      reminder,
		Metadata:      b.Metadata,
		SentAt:        time.Now().UTC(),
	}
}
