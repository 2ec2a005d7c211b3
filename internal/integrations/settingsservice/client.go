package settingsservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	workingHoursPath    = "/settings/working-hours"
	bookingSettingsPath = "/settings/booking"
)

// Client клиент удалённого источника настроек расписания (CMS)
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
// Пустой baseURL означает, что удалённый источник не настроен
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetWorkingHours получает рабочие часы и рабочие дни
func (c *Client) GetWorkingHours(ctx context.Context) (*WorkingHours, error) {
	var hours WorkingHours
	if err := c.get(ctx, workingHoursPath, &hours); err != nil {
		return nil, err
	}
	return &hours, nil
}

// GetBookingSettings получает настройки бронирования
func (c *Client) GetBookingSettings(ctx context.Context) (*BookingSettings, error) {
	var settings BookingSettings
	if err := c.get(ctx, bookingSettingsPath, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("settingsservice: request %s failed: %v", path, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotConfigured, path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrInvalidResponse, path, err)
	}

	return nil
}
