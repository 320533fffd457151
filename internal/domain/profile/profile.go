package profile

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/lumee/internal/domain/extract"
)

// DateLayout is the calendar date format used by schedule entries.
const DateLayout = "2006-01-02"

// Profile is owned by an external store and read-only here.
type Profile struct {
	UserID           string          `json:"userId" yaml:"userId"`
	Name             string          `json:"name" yaml:"name"`
	Hobbies          []string        `json:"hobbies" yaml:"hobbies"`
	SensitiveFactors []string        `json:"sensitiveFactors" yaml:"sensitiveFactors"`
	Schedule         []ScheduleEntry `json:"schedule" yaml:"schedule"`
}

// ScheduleEntry is one calendar item. Location is optional; the title is
// scanned for a place when it is empty.
type ScheduleEntry struct {
	Date     string `json:"date" yaml:"date"`
	Title    string `json:"title" yaml:"title"`
	Location string `json:"location,omitempty" yaml:"location"`
}

// Repository loads profiles by user id.
type Repository interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
}

// ScheduleLocation returns the place of the first schedule entry on date.
func ScheduleLocation(p Profile, date time.Time) (string, bool) {
	day := date.Format(DateLayout)
	for _, entry := range p.Schedule {
		if strings.TrimSpace(entry.Date) != day {
			continue
		}
		if loc := strings.TrimSpace(entry.Location); loc != "" {
			return extract.CanonicalPlace(loc), true
		}
		if loc, ok := extract.ExtractLocation(entry.Title); ok {
			return loc, true
		}
	}
	return "", false
}

// Summary renders the profile for the LLM prompt.
func (p Profile) Summary(lang string) string {
	none := "none"
	labels := [3]string{"Name", "Sensitive factors", "Hobbies"}
	if lang == "ko" {
		none = "없음"
		labels = [3]string{"이름", "민감 요소", "취미"}
	}
	join := func(values []string) string {
		if len(values) == 0 {
			return none
		}
		return strings.Join(values, ", ")
	}
	name := p.Name
	if name == "" {
		name = none
	}
	var b strings.Builder
	b.WriteString("- " + labels[0] + ": " + name + "\n")
	b.WriteString("- " + labels[1] + ": " + join(p.SensitiveFactors) + "\n")
	b.WriteString("- " + labels[2] + ": " + join(p.Hobbies))
	return b.String()
}
