package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrMalformedRule indicates a stored rule string could not be decoded. It is
// a data-integrity failure: the write path or the storage was corrupted, so
// callers must surface it rather than substitute a default rule.
var ErrMalformedRule = errors.New("recurrence: malformed rule string")

// referenceStamp anchors the DTSTART line of weekly and monthly rules. The
// date portion only carries the local time and zone; it is never an
// occurrence. 2000-01-03 is a Monday.
var referenceDate = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

const localStampLayout = "20060102T150405"

// Encode serializes the rule into its canonical stored string. The string is
// a set of iCalendar-shaped lines carrying the frequency kind, the local
// start time, the timezone and the kind-specific parameters, such that
// Decode(Encode(r)) reproduces r exactly.
func Encode(rule Rule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}

	lines := make([]string, 0, 3)

	switch rule.Kind {
	case KindWeekly:
		lines = append(lines, dtstartLine(rule.Timezone, referenceDate, rule.StartTime))
		option := rrule.ROption{
			Freq:      rrule.WEEKLY,
			Interval:  rule.Interval,
			Byweekday: []rrule.Weekday{toRRuleWeekday(rule.Weekday)},
		}
		lines = append(lines, "RRULE:"+option.RRuleString())
	case KindMonthly:
		lines = append(lines, dtstartLine(rule.Timezone, referenceDate, rule.StartTime))
		option := rrule.ROption{
			Freq:      rrule.MONTHLY,
			Byweekday: []rrule.Weekday{nthWeekday(rule.Weekday, rule.Nth)},
		}
		lines = append(lines, "RRULE:"+option.RRuleString())
	case KindSingle:
		dates := rule.normalizedDates()
		lines = append(lines, dtstartLine(rule.Timezone, dates[0], rule.StartTime))
		if len(dates) > 1 {
			stamps := make([]string, 0, len(dates)-1)
			for _, d := range dates[1:] {
				stamps = append(stamps, localStamp(d, rule.StartTime))
			}
			lines = append(lines, fmt.Sprintf("RDATE;TZID=%s:%s", rule.Timezone, strings.Join(stamps, ",")))
		}
		// COUNT caps expansion at the literal date count so the stored
		// string can never describe an unbounded series.
		option := rrule.ROption{Freq: rrule.DAILY, Count: len(dates)}
		lines = append(lines, "RRULE:"+option.RRuleString())
	}

	return strings.Join(lines, "\n"), nil
}

// Decode parses a canonical stored string back into a rule.
func Decode(encoded string) (Rule, error) {
	var (
		dtstartZone  string
		dtstartLocal time.Time
		haveDtstart  bool
		option       *rrule.ROption
		rdates       []time.Time
	)

	for _, raw := range strings.Split(encoded, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "DTSTART;TZID="):
			zone, local, err := parseZonedStamp(strings.TrimPrefix(line, "DTSTART;TZID="))
			if err != nil {
				return Rule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
			}
			dtstartZone, dtstartLocal, haveDtstart = zone, local, true
		case strings.HasPrefix(line, "RDATE;TZID="):
			zone, stamps, found := strings.Cut(strings.TrimPrefix(line, "RDATE;TZID="), ":")
			if !found {
				return Rule{}, fmt.Errorf("%w: RDATE line %q lacks a value", ErrMalformedRule, line)
			}
			loc, err := time.LoadLocation(zone)
			if err != nil {
				return Rule{}, fmt.Errorf("%w: unknown RDATE timezone %q", ErrMalformedRule, zone)
			}
			for _, stamp := range strings.Split(stamps, ",") {
				parsed, err := time.ParseInLocation(localStampLayout, stamp, loc)
				if err != nil {
					return Rule{}, fmt.Errorf("%w: bad RDATE stamp %q", ErrMalformedRule, stamp)
				}
				rdates = append(rdates, parsed)
			}
		case strings.HasPrefix(line, "RRULE:"):
			parsed, err := rrule.StrToROption(strings.TrimPrefix(line, "RRULE:"))
			if err != nil {
				return Rule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
			}
			option = parsed
		default:
			return Rule{}, fmt.Errorf("%w: unexpected line %q", ErrMalformedRule, line)
		}
	}

	if !haveDtstart {
		return Rule{}, fmt.Errorf("%w: missing DTSTART", ErrMalformedRule)
	}
	if option == nil {
		return Rule{}, fmt.Errorf("%w: missing RRULE", ErrMalformedRule)
	}

	rule := Rule{
		StartTime: TimeOfDay{Hour: dtstartLocal.Hour(), Minute: dtstartLocal.Minute()},
		Timezone:  dtstartZone,
	}

	switch option.Freq {
	case rrule.WEEKLY:
		if len(option.Byweekday) != 1 {
			return Rule{}, fmt.Errorf("%w: weekly rule requires exactly one BYDAY entry", ErrMalformedRule)
		}
		if n := option.Byweekday[0].N(); n != 0 {
			return Rule{}, fmt.Errorf("%w: weekly BYDAY must not carry an ordinal, got %+d", ErrMalformedRule, n)
		}
		if err := rejectLimits(option); err != nil {
			return Rule{}, err
		}
		rule.Kind = KindWeekly
		rule.Weekday = fromRRuleWeekday(option.Byweekday[0])
		rule.Interval = option.Interval
		if rule.Interval == 0 {
			rule.Interval = 1
		}
	case rrule.MONTHLY:
		if len(option.Byweekday) != 1 {
			return Rule{}, fmt.Errorf("%w: monthly rule requires exactly one BYDAY entry", ErrMalformedRule)
		}
		if err := rejectLimits(option); err != nil {
			return Rule{}, err
		}
		rule.Kind = KindMonthly
		rule.Weekday = fromRRuleWeekday(option.Byweekday[0])
		rule.Nth = option.Byweekday[0].N()
		if rule.Nth == 0 {
			return Rule{}, fmt.Errorf("%w: monthly BYDAY lacks an ordinal", ErrMalformedRule)
		}
	case rrule.DAILY:
		rule.Kind = KindSingle
		dates := []time.Time{dateOnly(dtstartLocal)}
		for _, d := range rdates {
			dates = append(dates, dateOnly(d))
		}
		rule.ExtraDates = dates
		if option.Count != len(dates) {
			return Rule{}, fmt.Errorf("%w: COUNT=%d does not match %d listed dates", ErrMalformedRule, option.Count, len(dates))
		}
	default:
		return Rule{}, fmt.Errorf("%w: unsupported frequency %v", ErrMalformedRule, option.Freq)
	}

	if err := rule.Validate(); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrMalformedRule, err)
	}
	return rule, nil
}

// rejectLimits refuses COUNT and UNTIL on recurring rules. The series length
// comes from the term bounds at expansion time, so a stored limit means the
// string was not produced by Encode.
func rejectLimits(option *rrule.ROption) error {
	if option.Count != 0 {
		return fmt.Errorf("%w: unexpected COUNT on a recurring rule", ErrMalformedRule)
	}
	if !option.Until.IsZero() {
		return fmt.Errorf("%w: unexpected UNTIL on a recurring rule", ErrMalformedRule)
	}
	return nil
}

func dtstartLine(zone string, date time.Time, at TimeOfDay) string {
	return fmt.Sprintf("DTSTART;TZID=%s:%s", zone, localStamp(date, at))
}

func localStamp(date time.Time, at TimeOfDay) string {
	y, m, d := date.Date()
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", y, int(m), d, at.Hour, at.Minute)
}

func parseZonedStamp(value string) (string, time.Time, error) {
	zone, stamp, found := strings.Cut(value, ":")
	if !found || zone == "" {
		return "", time.Time{}, fmt.Errorf("missing TZID or value in %q", value)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("unknown timezone %q", zone)
	}
	parsed, err := time.ParseInLocation(localStampLayout, stamp, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad local stamp %q", stamp)
	}
	return zone, parsed, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toRRuleWeekday(wd time.Weekday) rrule.Weekday {
	switch wd {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}

// nthWeekday builds an ordinal BYDAY entry. rrule.Weekday.Nth has a pointer
// receiver, so the base weekday needs an addressable binding first.
func nthWeekday(wd time.Weekday, n int) rrule.Weekday {
	base := toRRuleWeekday(wd)
	return base.Nth(n)
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	// rrule-go numbers weekdays Monday=0..Sunday=6; time.Weekday uses
	// Sunday=0..Saturday=6.
	return time.Weekday((wd.Day() + 1) % 7)
}
