/*
payload.go - Boundary normalization for the creation payload

PURPOSE:
  Client UIs across several generations submit the same logical fields
  under different names ("leaveType", "type", "Leave Type", ...) and dates
  in both day-first and ISO formats. This file resolves that surface once,
  at the boundary, into a typed CreateInput. Everything past ParsePayload
  works with real types.

ALIASES:
  Each logical field has an explicit ordered alias list; the first present,
  non-empty key wins. This is deliberate - no duck-typed property probing,
  and adding an alias is a one-line change with an obvious precedence.

DATE FORMATS:
  - 02/01/2006 and 02-01-2006 (day first; two-digit years map to 20xx)
  - 2006-01-02
  - RFC 3339 timestamps (time-of-day discarded)

TOTAL DAYS:
  half_day => 0.5 regardless of the date spread; otherwise whole days
  inclusive of both endpoints, minimum 1. Calendar days - weekends and
  holidays count.
*/
package leave

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CREATE INPUT
// =============================================================================

// CreateInput is the normalized creation payload.
type CreateInput struct {
	Type     Type         `validate:"required,oneof=sick casual earned unpaid maternity paternity comp_off other"`
	Reason   string       `validate:"required"`
	Duration DurationType `validate:"required,oneof=full_day half_day multiple_days"`

	StartDate Date
	EndDate   Date
}

// Ordered alias lists for the creation fields. First present key wins.
var (
	typeAliases     = []string{"leaveType", "type", "leave_type", "leave", "Leave Type"}
	reasonAliases   = []string{"reason", "note", "notes", "Reason"}
	startAliases    = []string{"startDate", "start_date", "start", "fromDate", "from", "Start Date"}
	endAliases      = []string{"endDate", "end_date", "end", "toDate", "to", "End Date"}
	durationAliases = []string{"durationType", "duration", "Duration"}
)

// ParsePayload resolves aliases, parses dates and normalizes the duration.
// Missing or unrecognizable required fields fail closed with a
// MissingFieldsError; unparseable dates fail with ErrInvalidDate.
func ParsePayload(body map[string]any) (*CreateInput, error) {
	leaveType := firstAlias(body, typeAliases)
	reason := firstAlias(body, reasonAliases)
	startRaw := firstAlias(body, startAliases)
	endRaw := firstAlias(body, endAliases)
	if endRaw == "" {
		// Single-day requests often arrive without an explicit end.
		endRaw = startRaw
	}

	var missing []string
	if leaveType == "" {
		missing = append(missing, "leaveType")
	}
	if reason == "" {
		missing = append(missing, "reason")
	}
	if startRaw == "" {
		missing = append(missing, "startDate")
	}
	if endRaw == "" {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	start, err := ParseDateFlexible(startRaw)
	if err != nil {
		return nil, fmt.Errorf("startDate %q: %w", startRaw, ErrInvalidDate)
	}
	end, err := ParseDateFlexible(endRaw)
	if err != nil {
		return nil, fmt.Errorf("endDate %q: %w", endRaw, ErrInvalidDate)
	}

	in := &CreateInput{
		Type:      Type(strings.TrimSpace(leaveType)),
		Reason:    strings.TrimSpace(reason),
		Duration:  NormalizeDuration(firstAlias(body, durationAliases)),
		StartDate: start,
		EndDate:   end,
	}

	if err := validate.Struct(in); err != nil {
		var invalid []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				invalid = append(invalid, lowerFirst(fe.Field()))
			}
			return nil, &MissingFieldsError{Fields: invalid}
		}
		return nil, err
	}
	return in, nil
}

var validate = validator.New()

func firstAlias(body map[string]any, aliases []string) string {
	for _, key := range aliases {
		v, ok := body[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// =============================================================================
// FLEXIBLE DATE PARSING
// =============================================================================

// dayFirstRe matches dd/mm/yyyy and dd-mm-yyyy, with two-digit years
// accepted and mapped into 20xx.
var dayFirstRe = regexp.MustCompile(`^([0-3]?\d)[-/](0?[1-9]|1[0-2])[-/]((?:19|20)?\d\d)$`)

// ParseDateFlexible accepts day-first and ISO date strings.
func ParseDateFlexible(value string) (Date, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Date{}, ErrInvalidDate
	}

	if m := dayFirstRe.FindStringSubmatch(v); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		d := NewDate(year, time.Month(month), day)
		// time.Date normalizes out-of-range days (Feb 31 -> Mar 3); treat
		// any normalization as a bad input.
		if d.Day() != day || int(d.Month()) != month {
			return Date{}, ErrInvalidDate
		}
		return d, nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// NormalizeDuration maps label-ish inputs ("Half Day", "multiple") onto the
// duration enum. Unrecognized or absent values default to multiple_days.
func NormalizeDuration(value string) DurationType {
	s := strings.ToLower(strings.TrimSpace(value))
	switch {
	case s == "":
		return DurationMultipleDays
	case strings.Contains(s, "half"):
		return DurationHalfDay
	case strings.Contains(s, "full"):
		return DurationFullDay
	case strings.Contains(s, "multi") || strings.Contains(s, "days"):
		return DurationMultipleDays
	}
	return DurationMultipleDays
}

// =============================================================================
// TOTAL DAYS
// =============================================================================

var halfDay = decimal.NewFromFloat(0.5)

// TotalDays derives the charged days from the duration type and date range.
// The value is fixed at creation and never recomputed.
func TotalDays(duration DurationType, start, end Date) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, ErrInvalidDateRange
	}
	if duration == DurationHalfDay {
		return halfDay, nil
	}
	days := DaysBetween(start, end) + 1
	if days < 1 {
		days = 1
	}
	return decimal.NewFromInt(int64(days)), nil
}
