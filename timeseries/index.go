package timeseries

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// dateFormats are tried in order when a ds/date cell is not an integer.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// Index is the position of an observation: an integer step or a timestamp.
type Index struct {
	Step   int64
	Time   time.Time
	IsTime bool
}

// StepIndex returns an integer index.
func StepIndex(step int64) Index {
	return Index{Step: step}
}

// TimeIndex returns a timestamp index.
func TimeIndex(t time.Time) Index {
	return Index{Time: t, IsTime: true}
}

// ParseIndex parses an integer step or one of the supported date layouts.
// An extra layout, when non-empty, is tried first.
func ParseIndex(s string, layout string) (Index, error) {
	s = strings.TrimSpace(strings.Trim(s, "\""))
	if s == "" {
		return Index{}, errors.New("empty index")
	}
	if step, err := strconv.ParseInt(s, 10, 64); err == nil {
		return StepIndex(step), nil
	}
	// Spreadsheets often store integer steps as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return StepIndex(int64(f)), nil
	}
	formats := dateFormats
	if layout != "" {
		formats = append([]string{layout}, dateFormats...)
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return TimeIndex(t), nil
		}
	}
	return Index{}, errors.New("unrecognised index " + strconv.Quote(s))
}

// Before orders indices. Steps sort before timestamps.
func (i Index) Before(j Index) bool {
	switch {
	case i.IsTime && j.IsTime:
		return i.Time.Before(j.Time)
	case !i.IsTime && !j.IsTime:
		return i.Step < j.Step
	default:
		return !i.IsTime
	}
}

// Equal reports whether both indices denote the same position.
func (i Index) Equal(j Index) bool {
	if i.IsTime != j.IsTime {
		return false
	}
	if i.IsTime {
		return i.Time.Equal(j.Time)
	}
	return i.Step == j.Step
}

// String formats a step as an integer and a timestamp as a date, or as
// RFC 3339 when it carries a time of day.
func (i Index) String() string {
	if !i.IsTime {
		return strconv.FormatInt(i.Step, 10)
	}
	if i.Time.Hour() == 0 && i.Time.Minute() == 0 && i.Time.Second() == 0 && i.Time.Nanosecond() == 0 {
		return i.Time.Format("2006-01-02")
	}
	return i.Time.Format(time.RFC3339)
}

// MarshalJSON encodes a step as a number and a timestamp as a string.
func (i Index) MarshalJSON() ([]byte, error) {
	if !i.IsTime {
		return []byte(strconv.FormatInt(i.Step, 10)), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts the encodings produced by MarshalJSON.
func (i *Index) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	idx, err := ParseIndex(s, "")
	if err != nil {
		return err
	}
	*i = idx
	return nil
}

func (i Index) key() string {
	if i.IsTime {
		return "t" + strconv.FormatInt(i.Time.UnixNano(), 10)
	}
	return "s" + strconv.FormatInt(i.Step, 10)
}
