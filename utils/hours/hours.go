package hours

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Package hours evaluates a narrow subset of the OSM opening_hours format:
// semicolon-separated "DayRange HH:MM-HH:MM" rules plus the 24/7 literals.
// It is a best-effort heuristic, not a full recurrence-rule parser.

var ruleRe = regexp.MustCompile(`^([A-Za-z]{2}(?:-[A-Za-z]{2})?)\s+(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`)

var dayCodes = map[string]time.Weekday{
	"Mo": time.Monday,
	"Tu": time.Tuesday,
	"We": time.Wednesday,
	"Th": time.Thursday,
	"Fr": time.Friday,
	"Sa": time.Saturday,
	"Su": time.Sunday,
}

// Rule is a single day-range/time-range fragment. Open and Close are minutes
// since midnight; Close < Open means the range wraps past midnight.
type Rule struct {
	StartDay time.Weekday
	EndDay   time.Weekday
	Open     int
	Close    int
}

// Schedule is a parsed weekly schedule. Skipped records the rule fragments
// that did not match the expected pattern, so callers can report what was
// ignored instead of failing the whole parse.
type Schedule struct {
	Always  bool
	Rules   []Rule
	Skipped []string
}

// Parse splits a weekly-hours string into rules. Malformed fragments are
// recorded in Skipped, never returned as errors.
func Parse(spec string) Schedule {
	var sched Schedule

	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "":
		return sched
	case "24/7", "24h":
		sched.Always = true
		return sched
	}

	for _, frag := range strings.Split(spec, ";") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		m := ruleRe.FindStringSubmatch(frag)
		if m == nil {
			sched.Skipped = append(sched.Skipped, frag)
			continue
		}

		dayRange := m[1]
		openHour, _ := strconv.Atoi(m[2])
		openMin, _ := strconv.Atoi(m[3])
		closeHour, _ := strconv.Atoi(m[4])
		closeMin, _ := strconv.Atoi(m[5])

		var start, end time.Weekday
		if i := strings.Index(dayRange, "-"); i >= 0 {
			s, okS := dayCodes[dayRange[:i]]
			e, okE := dayCodes[dayRange[i+1:]]
			if !okS || !okE {
				sched.Skipped = append(sched.Skipped, frag)
				continue
			}
			start, end = s, e
		} else {
			d, ok := dayCodes[dayRange]
			if !ok {
				sched.Skipped = append(sched.Skipped, frag)
				continue
			}
			start, end = d, d
		}

		sched.Rules = append(sched.Rules, Rule{
			StartDay: start,
			EndDay:   end,
			Open:     openHour*60 + openMin,
			Close:    closeHour*60 + closeMin,
		})
	}
	return sched
}

func (r Rule) matchesDay(d time.Weekday) bool {
	if r.StartDay <= r.EndDay {
		return d >= r.StartDay && d <= r.EndDay
	}
	// Wrapping range, e.g. Fr-Mo.
	return d >= r.StartDay || d <= r.EndDay
}

// admits reports whether the instant (day, minutes-since-midnight) falls
// inside the rule. Boundaries are inclusive at both ends. An overnight range
// also covers the early hours of the day after the rule's day range.
func (r Rule) admits(day time.Weekday, minutes int) bool {
	if r.Close < r.Open {
		if r.matchesDay(day) && minutes >= r.Open {
			return true
		}
		prev := (day + 6) % 7
		return r.matchesDay(prev) && minutes <= r.Close
	}
	return r.matchesDay(day) && minutes >= r.Open && minutes <= r.Close
}

// OpenAt reports whether the schedule admits the given instant. A schedule
// with no matching rule evaluates to closed.
func (s Schedule) OpenAt(t time.Time) bool {
	if s.Always {
		return true
	}
	day := t.Weekday()
	minutes := t.Hour()*60 + t.Minute()
	for _, r := range s.Rules {
		if r.admits(day, minutes) {
			return true
		}
	}
	return false
}

// IsOpen parses spec and evaluates it at t in one step.
func IsOpen(spec string, t time.Time) bool {
	return Parse(spec).OpenAt(t)
}
