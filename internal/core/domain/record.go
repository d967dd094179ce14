package domain

import (
	"errors"
	"time"
)

const (
	// DayLayout is the calendar-day key used for grouping and "today" checks.
	DayLayout = "2006-01-02"
	// ClockLayout formats startTime/endTime.
	ClockLayout = "15:04"
	// EndOfDay is the fixed endTime stamped on every record.
	EndOfDay = "23:59"
)

var (
	ErrRecordNotFound = wrapNotFound("record")
	ErrKeyNotFound    = errors.New("key not found")
	ErrMalformedState = errors.New("malformed persisted state")
)

// Attachment references a file by an ephemeral handle. File content is
// never stored.
type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"type"`
}

// Record is a single work log entry. UserName and Department are snapshots
// taken when the record was created and are never refreshed from the
// directory.
type Record struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	UserName    string       `json:"userName"`
	ProjectName string       `json:"projectName"`
	Description string       `json:"description"`
	Attachments []Attachment `json:"fileUrls"`
	Department  string       `json:"department"`
	Date        time.Time    `json:"date"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
}

// Day returns the calendar day of the record in loc.
func (r Record) Day(loc *time.Location) string {
	return DayKey(r.Date, loc)
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r.Attachments != nil {
		r.Attachments = append([]Attachment(nil), r.Attachments...)
	}
	return r
}

// DayKey formats t as YYYY-MM-DD in loc (UTC when loc is nil).
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}
