// Package seed loads an event catalogue from TOML and inserts it through the
// event service.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"devevents/internal/domain"
)

//go:embed events.toml
var defaultCatalogue string

// Catalogue is the decoded form of a seed file.
type Catalogue struct {
	Events []EventSpec `toml:"event"`
}

// EventSpec is one [[event]] table. Slug and timestamps are derived on insert.
type EventSpec struct {
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Overview    string   `toml:"overview"`
	Image       string   `toml:"image"`
	Venue       string   `toml:"venue"`
	Location    string   `toml:"location"`
	Date        string   `toml:"date"`
	Time        string   `toml:"time"`
	Mode        string   `toml:"mode"`
	Audience    string   `toml:"audience"`
	Agenda      []string `toml:"agenda"`
	Organizer   string   `toml:"organizer"`
	Tags        []string `toml:"tags"`
}

// Event converts the catalogue entry into a domain event.
func (s EventSpec) Event() *domain.Event {
	return &domain.Event{
		Title:       s.Title,
		Description: s.Description,
		Overview:    s.Overview,
		Image:       s.Image,
		Venue:       s.Venue,
		Location:    s.Location,
		Date:        s.Date,
		Time:        s.Time,
		Mode:        domain.EventMode(strings.ToLower(strings.TrimSpace(s.Mode))),
		Audience:    s.Audience,
		Agenda:      s.Agenda,
		Organizer:   s.Organizer,
		Tags:        s.Tags,
	}
}

// Default returns the built-in catalogue.
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// LoadFile decodes the catalogue at path.
func LoadFile(path string) (*Catalogue, error) {
	var c Catalogue
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &c, nil
}

// Parse decodes a catalogue from TOML text. Unknown keys are rejected.
func Parse(data string) (*Catalogue, error) {
	var c Catalogue
	md, err := toml.Decode(data, &c)
	if err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return &c, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
}

// Result counts what Run did.
type Result struct {
	Created int
	Skipped int
	Failed  int
}

// Run creates every event in c. Events whose slug already exists are skipped.
// Invalid events are reported in the returned error after the rest are processed.
func Run(ctx context.Context, svc domain.EventService, c *Catalogue, logger *slog.Logger) (Result, error) {
	var (
		res  Result
		errs []error
	)
	for _, spec := range c.Events {
		event := spec.Event()
		err := svc.CreateEvent(ctx, event)
		switch {
		case err == nil:
			res.Created++
			logger.InfoContext(ctx, "event created", "slug", event.Slug, "id", event.ID)
		case errors.Is(err, domain.ErrDuplicateSlug):
			res.Skipped++
			logger.InfoContext(ctx, "event exists, skipping", "slug", event.Slug)
		case errors.Is(err, domain.ErrInvalidInput):
			res.Failed++
			errs = append(errs, fmt.Errorf("event %q: %w", spec.Title, err))
		default:
			return res, fmt.Errorf("event %q: %w", spec.Title, err)
		}
	}
	return res, errors.Join(errs...)
}
