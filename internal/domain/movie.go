package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used on the wire for release dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date with DateLayout, or an empty string for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts YYYY-MM-DD, null, or an empty string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("date must follow YYYY-MM-DD format: %w", err)
	}
	d.Time = parsed
	return nil
}

// MovieInfo is the metadata record served by the movie-info service.
type MovieInfo struct {
	ID          string   `json:"movieInfoId"`
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Cast        []string `json:"cast"`
	ReleaseDate Date     `json:"releaseDate"`
}

// Movie is the aggregate returned to callers: one movie's metadata plus its reviews.
type Movie struct {
	MovieInfo MovieInfo `json:"movieInfo"`
	Reviews   []Review  `json:"reviewList"`
}

// NewMovie combines metadata and reviews. A nil review slice becomes an empty one
// so the encoded reviewList is always an array.
func NewMovie(info MovieInfo, reviews []Review) Movie {
	if reviews == nil {
		reviews = []Review{}
	}
	return Movie{MovieInfo: info, Reviews: reviews}
}
