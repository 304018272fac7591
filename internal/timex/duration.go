// Package timex holds small time helpers shared by the config loaders and the
// session bookkeeping.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	// Embedded zone database so the reference zone resolves on hosts without one.
	_ "time/tzdata"
)

// Duration wraps time.Duration so JSON configs can write either "3s" or an
// integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// HoursPrecision is the number of decimal places kept in worked-hours values.
const HoursPrecision = 10

// Hours returns end-start in hours rounded to HoursPrecision decimal places.
// Both instants are converted to loc first so the result does not depend on
// the zones the timestamps were recorded in.
func Hours(start, end time.Time, loc *time.Location) float64 {
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}
	h := end.Sub(start).Hours()
	scale := math.Pow10(HoursPrecision)
	return math.Round(h*scale) / scale
}

// DefaultTimezone is the reference zone used for calendar fields and
// duration arithmetic unless configured otherwise.
const DefaultTimezone = "America/Sao_Paulo"

// LoadLocation resolves name, falling back to DefaultTimezone when blank.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}
