package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"alfredoptarigan/admission-tracker/internal/models"
)

// MeetingSpec describes the screening call handed to the scheduling
// collaborators.
type MeetingSpec struct {
	Topic           string
	Description     string
	Start           time.Time
	DurationMinutes int
	Timezone        string
	AttendeeEmail   string
	AttendeeName    string
}

func (s MeetingSpec) End() time.Time {
	return s.Start.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// MeetingScheduler books a meeting with an external provider and returns
// the provider's description of it.
type MeetingScheduler interface {
	Create(ctx context.Context, spec MeetingSpec) (models.MeetingInfo, error)
}

type zoomScheduler struct {
	baseURL string
	token   string
	userID  string
}

func NewZoomScheduler(baseURL, token, userID string) MeetingScheduler {
	return &zoomScheduler{baseURL: strings.TrimRight(baseURL, "/"), token: token, userID: userID}
}

func (z *zoomScheduler) Create(ctx context.Context, spec MeetingSpec) (models.MeetingInfo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/meetings", z.baseURL, url.PathEscape(z.userID))
	payload := fiber.Map{
		"topic":      spec.Topic,
		"type":       2, // scheduled
		"start_time": spec.Start.UTC().Format("2006-01-02T15:04:05Z"),
		"duration":   spec.DurationMinutes,
		"timezone":   spec.Timezone,
		"agenda":     spec.Description,
		"settings": fiber.Map{
			"join_before_host": false,
			"waiting_room":     true,
		},
	}

	body, err := postJSON(ctx, endpoint, z.token, payload)
	if err != nil {
		return nil, fmt.Errorf("zoom: %w", err)
	}

	res := gjson.ParseBytes(body)
	if !res.Get("id").Exists() || !res.Get("join_url").Exists() {
		return nil, fmt.Errorf("zoom: response is missing id or join_url")
	}

	return models.MeetingInfo{
		"id":        res.Get("id").String(),
		"joinUrl":   res.Get("join_url").String(),
		"startUrl":  res.Get("start_url").String(),
		"password":  res.Get("password").String(),
		"startTime": res.Get("start_time").String(),
		"duration":  res.Get("duration").Int(),
	}, nil
}

type calendarScheduler struct {
	baseURL    string
	token      string
	calendarID string
}

func NewCalendarScheduler(baseURL, token, calendarID string) MeetingScheduler {
	return &calendarScheduler{baseURL: strings.TrimRight(baseURL, "/"), token: token, calendarID: calendarID}
}

func (c *calendarScheduler) Create(ctx context.Context, spec MeetingSpec) (models.MeetingInfo, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events?sendUpdates=all", c.baseURL, url.PathEscape(c.calendarID))
	payload := fiber.Map{
		"summary":     spec.Topic,
		"description": spec.Description,
		"start": fiber.Map{
			"dateTime": spec.Start.Format(time.RFC3339),
			"timeZone": spec.Timezone,
		},
		"end": fiber.Map{
			"dateTime": spec.End().Format(time.RFC3339),
			"timeZone": spec.Timezone,
		},
		"attendees": []fiber.Map{
			{"email": spec.AttendeeEmail, "displayName": spec.AttendeeName},
		},
	}

	body, err := postJSON(ctx, endpoint, c.token, payload)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}

	res := gjson.ParseBytes(body)
	if !res.Get("id").Exists() {
		return nil, fmt.Errorf("calendar: response is missing id")
	}

	return models.MeetingInfo{
		"id":       res.Get("id").String(),
		"htmlLink": res.Get("htmlLink").String(),
		"status":   res.Get("status").String(),
		"start":    res.Get("start.dateTime").String(),
		"end":      res.Get("end.dateTime").String(),
	}, nil
}

// postJSON sends payload with a bearer token and returns the body of a 2xx
// response. The context deadline bounds the request.
func postJSON(ctx context.Context, endpoint, token string, payload interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Post(endpoint).
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		JSON(payload)
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("request failed: %w", errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d: %s", code, providerMessage(body))
	}
	return body, nil
}

// providerMessage pulls a readable error out of a provider error body.
func providerMessage(body []byte) string {
	for _, path := range []string{"error.message", "message", "error"} {
		if msg := gjson.GetBytes(body, path); msg.Exists() && msg.Type == gjson.String {
			return msg.String()
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
