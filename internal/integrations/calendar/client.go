package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	freeBusyPath   = "/freeBusy"
	DefaultTimeout = 15 * time.Second
)

// Client клиент free/busy запросов к внешнему календарю
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
// Токен передаётся через oauth2-транспорт; пустой baseURL означает, что календарь отключён
func NewClient(baseURL, accessToken string, timeout time.Duration, log Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if accessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
		httpClient.Transport = &oauth2.Transport{Source: src, Base: http.DefaultTransport}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// QueryFreeBusy возвращает занятые интервалы календаря calendarID в диапазоне [timeMin, timeMax)
// Интервалы приводятся к UTC и сортируются по началу
func (c *Client) QueryFreeBusy(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]domain.BusyInterval, error) {
	if c.baseURL == "" || calendarID == "" {
		return nil, ErrNotConfigured
	}
	if !timeMin.Before(timeMax) {
		return nil, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, timeMin, timeMax)
	}

	body, err := json.Marshal(freeBusyRequest{
		TimeMin:  timeMin.UTC(),
		TimeMax:  timeMax.UTC(),
		TimeZone: "UTC",
		Items:    []freeBusyItemID{{ID: calendarID}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+freeBusyPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("calendar: freeBusy request failed: %v", err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(msg))
	}

	var result freeBusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrInvalidResponse, err)
	}

	cal, ok := result.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: calendar %q missing in response", ErrUnavailable, ErrInvalidResponse, calendarID)
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("%w: calendar %q: %s", ErrUnavailable, calendarID, cal.Errors[0].Reason)
	}

	intervals := make([]domain.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		if !b.Start.Before(b.End) {
			continue
		}
		intervals = append(intervals, domain.BusyInterval{Start: b.Start.UTC(), End: b.End.UTC()})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start.Before(intervals[j].Start) })

	return intervals, nil
}
