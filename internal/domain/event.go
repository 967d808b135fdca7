package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EventMode is how attendees take part in an event.
type EventMode string

const (
	EventModeOnline  EventMode = "online"
	EventModeOffline EventMode = "offline"
	EventModeHybrid  EventMode = "hybrid"
)

// Valid reports whether m is one of the known modes.
func (m EventMode) Valid() bool {
	switch m {
	case EventModeOnline, EventModeOffline, EventModeHybrid:
		return true
	}
	return false
}

// Event represents a listed developer event.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Overview    string    `json:"overview"`
	Image       string    `json:"image"`
	Venue       string    `json:"venue"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Mode        EventMode `json:"mode"`
	Audience    string    `json:"audience"`
	Agenda      []string  `json:"agenda"`
	Organizer   string    `json:"organizer"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate returns one message per violated field rule; nil means the event is valid.
func (e *Event) Validate() []string {
	var errs []string
	required := []struct {
		name  string
		value string
	}{
		{"title", e.Title},
		{"description", e.Description},
		{"overview", e.Overview},
		{"image", e.Image},
		{"venue", e.Venue},
		{"location", e.Location},
		{"date", e.Date},
		{"time", e.Time},
		{"audience", e.Audience},
		{"organizer", e.Organizer},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, f.name+" cannot be empty")
		}
	}
	if !e.Mode.Valid() {
		errs = append(errs, "mode must be one of: online, offline, hybrid")
	}
	if len(e.Agenda) == 0 {
		errs = append(errs, "agenda must be a non-empty list")
	}
	if len(e.Tags) == 0 {
		errs = append(errs, "tags must be a non-empty list")
	}
	return errs
}

// Normalize trims the title and recomputes derived fields before a save.
// prev is the stored version of the event, or nil when the event is new.
// The slug is regenerated only when the title changed or no slug exists;
// date and time are normalized only when they changed.
func (e *Event) Normalize(prev *Event) {
	e.Title = strings.TrimSpace(e.Title)
	if prev == nil || prev.Title != e.Title || e.Slug == "" {
		e.Slug = Slugify(e.Title)
	}
	if prev == nil || prev.Date != e.Date {
		e.Date = NormalizeDate(e.Date)
	}
	if prev == nil || prev.Time != e.Time {
		e.Time = NormalizeTime(e.Time)
	}
}

// PrepareEvent normalizes e as a new event and validates it.
// The returned error wraps ErrInvalidInput.
func PrepareEvent(e *Event) error {
	e.Normalize(nil)
	if errs := e.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSeparate = regexp.MustCompile(`[\s_-]+`)
)

// Slugify turns a title into a lowercase, hyphenated, URL-safe slug.
// Slugify(Slugify(t)) == Slugify(t).
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparate.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// dateLayouts are the inputs NormalizeDate understands, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
}

// NormalizeDate rewrites a parseable date as YYYY-MM-DD (UTC).
// Unparseable input is returned unchanged.
func NormalizeDate(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	return s
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// NormalizeTime rewrites H:MM, HH:MM and HH:MM:SS as HH:MM:SS.
// Anything else is returned unchanged.
func NormalizeTime(s string) string {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hours := m[1]
	if len(hours) == 1 {
		hours = "0" + hours
	}
	seconds := m[3]
	if seconds == "" {
		seconds = "00"
	}
	return hours + ":" + m[2] + ":" + seconds
}

// EventRepository defines the interface for event storage.
// Lookups of unknown or malformed IDs and slugs return ErrNotFound.
type EventRepository interface {
	// Create inserts the event and sets its ID. Returns ErrDuplicateSlug when the slug is taken.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// Exists reports whether an event with the given ID exists. Malformed IDs report false.
	Exists(ctx context.Context, id string) (bool, error)
	// List returns all events, newest first.
	List(ctx context.Context) ([]*Event, error)
	// ListSimilar returns up to limit events whose slug differs from slug.
	ListSimilar(ctx context.Context, slug string, limit int) ([]*Event, error)
}

// EventService defines read operations for the listing pages and the seed authoring path.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListSimilarEvents(ctx context.Context, slug string) ([]*Event, error)
}
