package extract

import "testing"

func TestExtractLocation(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		place string
		found bool
	}{
		{name: "short city form", in: "서울 날씨 어때", place: "서울특별시", found: true},
		{name: "no place", in: "미세먼지 알려줘", found: false},
		{name: "particle stripped", in: "내일 부산은 비 와?", place: "부산광역시", found: true},
		{name: "weekday removed", in: "다음주 월요일 강남구 날씨", place: "강남구", found: true},
		{name: "locative particle", in: "수원시에서 우산 챙겨야 할까", place: "수원시", found: true},
		{name: "province kept", in: "제주도 날씨", place: "제주특별자치도", found: true},
		{name: "offset removed", in: "3시간 뒤 대전 날씨", place: "대전광역시", found: true},
		{name: "adjective only", in: "오늘 추워?", found: false},
		{name: "filler typo", in: "지금 공기 어떄", found: false},
		{name: "latin text", in: "what's the weather in seoul", found: false},
	}

	for _, tc := range cases {
		place, found := ExtractLocation(tc.in)
		if found != tc.found || place != tc.place {
			t.Fatalf("%s: expected (%q, %v) got (%q, %v)", tc.name, tc.place, tc.found, place, found)
		}
	}
}

func TestIsWeatherTerm(t *testing.T) {
	for _, term := range []string{"날씨", " Weather ", "미세먼지", "마스크"} {
		if !IsWeatherTerm(term) {
			t.Fatalf("expected %q to be weather vocabulary", term)
		}
	}
	if IsWeatherTerm("강남구") {
		t.Fatalf("place name treated as weather vocabulary")
	}
}

func TestCanonicalPlace(t *testing.T) {
	if got := CanonicalPlace("세종시"); got != "세종특별자치시" {
		t.Fatalf("expected 세종특별자치시 got %q", got)
	}
	if got := CanonicalPlace(" 해운대구 "); got != "해운대구" {
		t.Fatalf("expected trimmed name got %q", got)
	}
}
