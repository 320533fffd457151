package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("Asia/Seoul", 9*60*60)

// Wednesday afternoon.
func referenceNow() time.Time {
	return time.Date(2025, time.June, 4, 14, 20, 0, 0, kst)
}

func TestExtractDate(t *testing.T) {
	now := referenceNow()
	cases := []struct {
		name string
		in   string
		want time.Time
		rule string
	}{
		{name: "next week monday", in: "다음주 월요일 날씨 알려줘", want: time.Date(2025, 6, 16, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "this week friday", in: "이번주 금요일 부산 날씨", want: time.Date(2025, 6, 6, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "same weekday", in: "수요일 날씨", want: time.Date(2025, 6, 4, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "next week same weekday", in: "다음 주 수요일", want: time.Date(2025, 6, 11, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "english next weekday", in: "weather next friday", want: time.Date(2025, 6, 6, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "english next same weekday", in: "next wednesday", want: time.Date(2025, 6, 11, 9, 0, 0, 0, kst), rule: RuleWeekday},
		{name: "today", in: "오늘 서울 날씨", want: now, rule: RuleDayWord},
		{name: "tomorrow", in: "내일 비 와?", want: now.AddDate(0, 0, 1), rule: RuleDayWord},
		{name: "day after tomorrow", in: "모레 미세먼지", want: now.AddDate(0, 0, 2), rule: RuleDayWord},
		{name: "english tomorrow", in: "Will it rain tomorrow?", want: now.AddDate(0, 0, 1), rule: RuleDayWord},
		{name: "english day after tomorrow", in: "the day after tomorrow", want: now.AddDate(0, 0, 2), rule: RuleDayWord},
		{name: "tomorrow afternoon clock", in: "내일 오후 3시 날씨", want: time.Date(2025, 6, 5, 15, 0, 0, 0, kst), rule: RuleDayClock},
		{name: "numeric days later", in: "3일 뒤 날씨", want: now.AddDate(0, 0, 3), rule: RuleDaysLater},
		{name: "word days later", in: "사흘 뒤에 비 와?", want: now.AddDate(0, 0, 3), rule: RuleDaysLater},
		{name: "two days later", in: "이틀 후 날씨", want: now.AddDate(0, 0, 2), rule: RuleDaysLater},
		{name: "english days later", in: "weather in 2 days", want: now.AddDate(0, 0, 2), rule: RuleDaysLater},
		{name: "hours later", in: "2시간 뒤 비 와?", want: now.Add(2 * time.Hour), rule: RuleHoursLater},
		{name: "english hours later", in: "rain in 3 hours?", want: now.Add(3 * time.Hour), rule: RuleHoursLater},
		{name: "minutes later", in: "30분 뒤 날씨", want: now.Add(30 * time.Minute), rule: RuleMinutesLater},
		{name: "afternoon clock", in: "오후 6시 기온", want: time.Date(2025, 6, 4, 18, 0, 0, 0, kst), rule: RuleClock},
		{name: "midnight", in: "오전 12시", want: time.Date(2025, 6, 4, 0, 0, 0, 0, kst), rule: RuleClock},
		{name: "english clock", in: "temperature at 5pm", want: time.Date(2025, 6, 4, 17, 0, 0, 0, kst), rule: RuleClock},
		{name: "month day", in: "6월 10일 날씨", want: time.Date(2025, 6, 10, 9, 0, 0, 0, kst), rule: RuleMonthDay},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractDate(tc.in, now)
			require.False(t, got.Defaulted)
			require.Equal(t, tc.rule, got.Rule)
			require.True(t, tc.want.Equal(got.Time), "expected %s got %s", tc.want, got.Time)
		})
	}
}

func TestExtractDateDefaultsToNow(t *testing.T) {
	now := referenceNow()

	got := ExtractDate("서울 날씨 어때", now)

	require.True(t, got.Defaulted)
	require.Equal(t, RuleFallback, got.Rule)
	require.True(t, now.Equal(got.Time))
	require.True(t, got.IsToday(now))
	require.False(t, got.HasClock())
}

func TestDateResultIsToday(t *testing.T) {
	now := referenceNow()

	require.True(t, ExtractDate("오늘 오후 9시", now).IsToday(now))
	require.False(t, ExtractDate("내일", now).IsToday(now))
	require.True(t, ExtractDate("2시간 뒤", now).HasClock())
}

func TestParseDateArgument(t *testing.T) {
	now := referenceNow()

	got, ok := ParseDateArgument("2025-06-10", now)
	require.True(t, ok)
	require.True(t, time.Date(2025, 6, 10, 9, 0, 0, 0, kst).Equal(got))

	got, ok = ParseDateArgument("tomorrow", now)
	require.True(t, ok)
	require.True(t, now.AddDate(0, 0, 1).Equal(got))

	got, ok = ParseDateArgument("2025-06-04", now)
	require.True(t, ok)
	require.True(t, now.Equal(got))

	_, ok = ParseDateArgument("  ", now)
	require.False(t, ok)

	_, ok = ParseDateArgument("whenever", now)
	require.False(t, ok)
}

func TestNearestForecastBucket(t *testing.T) {
	before := time.Date(2025, 6, 4, 14, 29, 59, 0, kst)
	after := time.Date(2025, 6, 4, 14, 30, 0, 0, kst)

	require.Equal(t, time.Date(2025, 6, 4, 14, 0, 0, 0, kst).Unix(), NearestForecastBucket(before))
	require.Equal(t, time.Date(2025, 6, 4, 15, 0, 0, 0, kst).Unix(), NearestForecastBucket(after))
}

func TestDateLabel(t *testing.T) {
	now := referenceNow()

	require.Equal(t, "2025년 6월 4일 수요일", DateLabel(now, "ko"))
	require.Equal(t, "Wednesday, June 4, 2025", DateLabel(now, "en"))
}
