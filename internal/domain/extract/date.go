package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateResult is the outcome of scanning an utterance for a date expression.
type DateResult struct {
	Time time.Time
	// Defaulted is true when nothing matched and Time is the reference instant.
	Defaulted bool
	Rule      string
}

// IsToday reports whether the extracted instant falls on the same calendar day as now.
func (r DateResult) IsToday(now time.Time) bool {
	return sameDay(r.Time, now)
}

// HasClock reports whether the rule that matched pinned a specific time of day
// or an hour/minute offset, as opposed to a whole day.
func (r DateResult) HasClock() bool {
	switch r.Rule {
	case RuleDayClock, RuleClock, RuleHoursLater, RuleMinutesLater:
		return true
	}
	return false
}

const (
	RuleWeekday      = "weekday"
	RuleDayClock     = "day_clock"
	RuleDayWord      = "day_word"
	RuleDaysLater    = "days_later"
	RuleHoursLater   = "hours_later"
	RuleMinutesLater = "minutes_later"
	RuleClock        = "clock"
	RuleMonthDay     = "month_day"
	RuleParsed       = "parsed"
	RuleFallback     = "fallback"
)

var (
	koWeekdayRe   = regexp.MustCompile(`(이번\s?주|다음\s?주)?\s*(일|월|화|수|목|금|토)요일`)
	enWeekdayRe   = regexp.MustCompile(`\b(this|next)?\s*(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	koDayClockRe  = regexp.MustCompile(`(오늘|내일|모레)\s*(오전|오후)?\s*(\d{1,2})\s*시(?:[^간]|$)`)
	koDaysLaterRe = regexp.MustCompile(`(\d{1,2}\s*일|하루|일일|이일|이틀|삼일|사흘|나흘|닷새|엿새|칠일|팔일|구일|십일)\s*(?:뒤|후)`)
	enDaysLaterRe = regexp.MustCompile(`\bin\s+(\d{1,2})\s+days?\b|\b(\d{1,2})\s+days?\s+(?:later|from now)\b`)
	koHoursRe     = regexp.MustCompile(`(\d{1,2})\s*시간\s*(?:뒤|후)`)
	enHoursRe     = regexp.MustCompile(`\bin\s+(\d{1,2})\s+hours?\b`)
	koMinutesRe   = regexp.MustCompile(`(\d{1,3})\s*분\s*(?:뒤|후)`)
	enMinutesRe   = regexp.MustCompile(`\bin\s+(\d{1,3})\s+minutes?\b`)
	koClockRe     = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})\s*시(?:[^간]|$)`)
	enClockRe     = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	monthDayRe    = regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	digitsRe      = regexp.MustCompile(`\d+`)
)

var koWeekdays = map[string]time.Weekday{
	"일": time.Sunday, "월": time.Monday, "화": time.Tuesday, "수": time.Wednesday,
	"목": time.Thursday, "금": time.Friday, "토": time.Saturday,
}

var enWeekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

var dayCountWords = map[string]int{
	"하루": 1, "일일": 1,
	"이일": 2, "이틀": 2,
	"삼일": 3, "사흘": 3,
	"나흘": 4,
	"닷새": 5,
	"엿새": 6,
	"칠일": 7, "팔일": 8, "구일": 9, "십일": 10,
}

var dayWordOffsets = map[string]int{"오늘": 0, "내일": 1, "모레": 2}

// ExtractDate resolves the first date expression in text relative to now. It
// never fails: when nothing matches it returns now with Defaulted set.
func ExtractDate(text string, now time.Time) DateResult {
	lower := strings.ToLower(text)

	if m := koWeekdayRe.FindStringSubmatch(lower); m != nil {
		qualifier := strings.ReplaceAll(m[1], " ", "")
		return DateResult{Time: weekdayFrom(now, koWeekdays[m[2]], qualifier == "다음주"), Rule: RuleWeekday}
	}
	if m := enWeekdayRe.FindStringSubmatch(lower); m != nil {
		return DateResult{Time: upcomingWeekday(now, enWeekdays[m[2]], m[1] == "next"), Rule: RuleWeekday}
	}

	if m := koDayClockRe.FindStringSubmatch(lower); m != nil {
		base := now.AddDate(0, 0, dayWordOffsets[m[1]])
		hour, _ := strconv.Atoi(m[3])
		return DateResult{Time: atHour(base, adjustMeridiem(hour, m[2]), 0), Rule: RuleDayClock}
	}

	switch {
	case strings.Contains(lower, "오늘"), strings.Contains(lower, "today"):
		return DateResult{Time: now, Rule: RuleDayWord}
	case strings.Contains(lower, "day after tomorrow"):
		return DateResult{Time: now.AddDate(0, 0, 2), Rule: RuleDayWord}
	case strings.Contains(lower, "내일"), strings.Contains(lower, "tomorrow"):
		return DateResult{Time: now.AddDate(0, 0, 1), Rule: RuleDayWord}
	case strings.Contains(lower, "모레"):
		return DateResult{Time: now.AddDate(0, 0, 2), Rule: RuleDayWord}
	}

	if m := koDaysLaterRe.FindStringSubmatch(lower); m != nil {
		if n, ok := dayCount(m[1]); ok {
			return DateResult{Time: now.AddDate(0, 0, n), Rule: RuleDaysLater}
		}
	}
	if m := enDaysLaterRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(firstNonEmpty(m[1], m[2])); err == nil {
			return DateResult{Time: now.AddDate(0, 0, n), Rule: RuleDaysLater}
		}
	}

	if n, ok := firstInt(lower, koHoursRe, enHoursRe); ok {
		return DateResult{Time: now.Add(time.Duration(n) * time.Hour), Rule: RuleHoursLater}
	}
	if n, ok := firstInt(lower, koMinutesRe, enMinutesRe); ok {
		return DateResult{Time: now.Add(time.Duration(n) * time.Minute), Rule: RuleMinutesLater}
	}

	if m := koClockRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[2])
		if hour <= 24 {
			return DateResult{Time: atHour(now, adjustMeridiem(hour, m[1]), 0), Rule: RuleClock}
		}
	}
	if m := enClockRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour >= 1 && hour <= 12 && minute < 60 {
			meridiem := "오전"
			if m[3] == "pm" {
				meridiem = "오후"
			}
			return DateResult{Time: atHour(now, adjustMeridiem(hour, meridiem), minute), Rule: RuleClock}
		}
	}

	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(now.Year(), time.Month(month), day, 9, 0, 0, 0, now.Location())
			return DateResult{Time: t, Rule: RuleMonthDay}
		}
	}

	return DateResult{Time: now, Defaulted: true, Rule: RuleFallback}
}

// ParseDateArgument interprets a date supplied by the LLM in a tool call. It
// understands the same phrases as ExtractDate plus absolute formats such as
// "2025-06-05" or "June 5, 2025".
func ParseDateArgument(arg string, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return time.Time{}, false
	}
	if res := ExtractDate(trimmed, now); !res.Defaulted {
		return res.Time, true
	}
	parsed, err := dateparse.ParseIn(trimmed, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	if parsed.Hour() == 0 && parsed.Minute() == 0 && parsed.Second() == 0 {
		if sameDay(parsed, now) {
			return now, true
		}
		parsed = atHour(parsed, 9, 0)
	}
	return parsed, true
}

// NearestForecastBucket rounds t to the closest hour (half past rounds up) and
// returns it as Unix seconds.
func NearestForecastBucket(t time.Time) int64 {
	rounded := t.Truncate(time.Hour)
	if t.Minute() >= 30 {
		rounded = rounded.Add(time.Hour)
	}
	return rounded.Unix()
}

var koWeekdayNames = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// DateLabel renders a human readable calendar date in the given language.
func DateLabel(t time.Time, lang string) string {
	if lang == "ko" {
		return t.Format("2006년 1월 2일 ") + koWeekdayNames[t.Weekday()]
	}
	return t.Format("Monday, January 2, 2006")
}

func weekdayFrom(now time.Time, target time.Weekday, nextWeek bool) time.Time {
	diff := (int(target) - int(now.Weekday()) + 7) % 7
	if nextWeek {
		diff += 7
	}
	return atHour(now.AddDate(0, 0, diff), 9, 0)
}

func upcomingWeekday(now time.Time, target time.Weekday, next bool) time.Time {
	diff := (int(target) - int(now.Weekday()) + 7) % 7
	if diff == 0 && next {
		diff = 7
	}
	return atHour(now.AddDate(0, 0, diff), 9, 0)
}

func adjustMeridiem(hour int, meridiem string) int {
	switch {
	case meridiem == "오후" && hour < 12:
		return hour + 12
	case meridiem == "오전" && hour == 12:
		return 0
	}
	return hour
}

func atHour(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

func dayCount(token string) (int, bool) {
	if n, ok := dayCountWords[token]; ok {
		return n, true
	}
	digits := digitsRe.FindString(token)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

func firstInt(text string, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
