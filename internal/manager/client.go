package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"walkhub/internal/apperrors"
	"walkhub/internal/models"
	"walkhub/internal/version"
)

const defaultTimeout = 30 * time.Second

// Client fetches events from the walks-manager mirror and normalizes them to
// the local Event shape. Requests are rate limited; each fetch is attempted
// exactly once and a failure aborts the caller's report, so retrying is the
// caller's concern.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// ClientConfig holds configuration for the walks-manager client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	RateLimit int // requests per second, 0 means unlimited
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewClient creates a walks-manager API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  version.UserAgent(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		log:        cfg.Logger,
	}
}

// managerEvent is the mirror's wire shape for one event.
type managerEvent struct {
	ID                 string   `json:"id"`
	ItemType           string   `json:"item_type"`
	GroupCode          string   `json:"group_code"`
	GroupName          string   `json:"group_name"`
	Status             string   `json:"status"`
	StartDateTime      *int64   `json:"start_date_time"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DistanceMiles      float64  `json:"distance_miles"`
	Attendees          []string `json:"attendees"`
	WalkLeaderName     string   `json:"walk_leader_name"`
	ContactMemberID    string   `json:"contact_member_id"`
	ContactEmail       string   `json:"contact_email"`
	ContactDisplayName string   `json:"contact_display_name"`
	OrganiserName      string   `json:"organiser_name"`
	URL                string   `json:"url"`
}

// FetchMappedEvents returns the mirror's events for [from, to) as epoch
// millis, normalized to models.Event with the walks-manager input source.
func (c *Client) FetchMappedEvents(ctx context.Context, from, to int64) ([]models.Event, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/events?%s", c.baseURL, url.Values{
		"from": []string{strconv.FormatInt(from, 10)},
		"to":   []string{strconv.FormatInt(to, 10)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("fetching walks-manager events", "from", from, "to", to)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "walks-manager fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.UpstreamError{
			Service:    "walks-manager",
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var raw []managerEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.Wrap(err, "decode walks-manager response")
	}

	events := make([]models.Event, 0, len(raw))
	for _, m := range raw {
		events = append(events, mapEvent(m))
	}
	c.log.Debug("fetched walks-manager events", "count", len(events))
	return events, nil
}

// mapEvent normalizes one mirror record. The mirror labels walks
// "group-walk"; everything else is a social/group event.
func mapEvent(m managerEvent) models.Event {
	itemType := models.ItemTypeGroupEvent
	if m.ItemType == "group-walk" || m.ItemType == models.ItemTypeWalk {
		itemType = models.ItemTypeWalk
	}

	return models.Event{
		GroupEventID:       m.ID,
		ItemType:           itemType,
		GroupCode:          m.GroupCode,
		GroupName:          m.GroupName,
		InputSource:        models.SourceWalksManager,
		Status:             m.Status,
		StartDateTime:      m.StartDateTime,
		Title:              m.Title,
		Description:        m.Description,
		DistanceMiles:      m.DistanceMiles,
		AttendeeCount:      len(m.Attendees),
		WalkLeaderName:     m.WalkLeaderName,
		ContactMemberID:    m.ContactMemberID,
		ContactEmail:       m.ContactEmail,
		ContactDisplayName: m.ContactDisplayName,
		OrganiserName:      m.OrganiserName,
		URLPath:            m.URL,
	}
}
