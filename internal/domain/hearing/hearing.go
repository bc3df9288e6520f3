package hearing

import (
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used by the cases table.
const DateLayout = "2006-01-02"

// Record is one hearing of one case for one client.
// Corresponds to a row of the 'cases' table. The engine never mutates it.
type Record struct {
	ID          int64
	ClientName  string
	Phone       string // Raw, as entered by the office
	CaseID      string
	HearingDate string // ISO 8601 date, kept raw so bad rows stay visible
	HearingTime string // Display form, never parsed
}

// Date parses HearingDate. Surrounding whitespace is ignored.
func (r *Record) Date() (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(r.HearingDate))
}

// Today returns the calendar date of now, at midnight in now's location.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// FormatDate renders a calendar date the way the cases table stores it.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DatedRecord pairs a record with its parsed hearing date.
type DatedRecord struct {
	Record *Record
	Date   time.Time
}

// PartitionByDate splits records into those whose hearing date parses and
// those whose date does not. Input order is preserved in both outputs.
func PartitionByDate(records []*Record) (valid []DatedRecord, rejected []*Record) {
	for _, r := range records {
		d, err := r.Date()
		if err != nil {
			rejected = append(rejected, r)
			continue
		}
		valid = append(valid, DatedRecord{Record: r, Date: d})
	}
	return valid, rejected
}
