package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	timeExpressionRe = regexp.MustCompile(`(오늘|내일|모레|이번\s?주\s?[월화수목금토일]요일?|다음\s?주\s?[월화수목금토일]요일?|[월화수목금토일]요일|\d{1,2}\s?일\s?(?:뒤|후)|\d{1,2}\s?시간\s?(?:뒤|후)|\d{1,3}\s?분\s?(?:뒤|후)|(?:오전|오후)\s?\d{1,2}\s?시|\d{1,2}\s?월\s?\d{1,2}\s?일|\d{1,2}\s?시)`)
	hangulRunRe      = regexp.MustCompile(`[가-힣]+`)
)

// particles are checked longest first. 도 and 시 are never stripped since
// they end province and city names.
var particles = []string{"에서는", "에서", "에는", "에선", "으로", "까지", "부터", "은", "는", "이", "가", "의", "에"}

var canonicalPlaces = map[string]string{
	"서울":  "서울특별시",
	"서울시": "서울특별시",
	"부산":  "부산광역시",
	"부산시": "부산광역시",
	"대구":  "대구광역시",
	"대구시": "대구광역시",
	"인천":  "인천광역시",
	"인천시": "인천광역시",
	"광주":  "광주광역시",
	"광주시": "광주광역시",
	"대전":  "대전광역시",
	"대전시": "대전광역시",
	"울산":  "울산광역시",
	"울산시": "울산광역시",
	"세종":  "세종특별자치시",
	"세종시": "세종특별자치시",
	"제주":  "제주특별자치도",
	"제주도": "제주특별자치도",
}

var weatherTerms = toSet(
	// weather and air vocabulary
	"날씨", "기온", "온도", "체감온도", "최고기온", "최저기온", "습도", "습해", "건조", "바람", "풍속", "풍향",
	"미세먼지", "초미세먼지", "먼지", "황사", "공기", "공기질", "대기", "꽃가루", "알레르기", "자외선", "햇빛",
	"선크림", "가시거리", "시야", "안개", "일출", "일몰", "해뜨는", "해지는", "구름", "흐림", "맑음", "이슬점",
	"비", "눈", "우산", "강수", "강수량", "강수확률", "소나기", "장마", "마스크", "그래프", "예보", "옷",
	"옷차림", "겉옷", "외투", "반팔", "패딩", "정보", "상태", "지수", "농도", "수치",
	// time words
	"오늘", "내일", "모레", "이번주", "다음주", "이번", "다음", "주말", "평일", "아침", "점심", "저녁", "밤",
	"새벽", "오전", "오후", "지금", "현재", "요즘", "하루", "이틀", "삼일", "사흘", "나흘", "닷새", "엿새",
	"뒤", "후", "동안", "시간", "몇시",
	// conversational fillers
	"알려줘", "알려주세요", "알려", "알려줄래", "어때", "어때요", "어떄", "어떤가요", "어떤지", "어떨까",
	"어떻게", "어떡해", "궁금해", "궁금해요", "궁금", "좀", "해줘", "보여줘", "보여", "필요해", "필요할까",
	"필요", "써야", "쓸까", "써야해", "해", "할까", "될까", "돼", "되나", "괜찮아", "괜찮을까", "나가도",
	"나가야", "나갈까", "입을까", "입지", "입어야", "뭐", "뭘", "뭐입지", "챙겨야", "챙길까", "가져가야",
	"있어", "있나요", "있을까", "많아", "많이", "높아", "낮아", "심해", "나쁨", "좋음", "보통", "얼마나",
	"몇", "정도", "그럼", "그러면", "그리고", "혹시", "오나", "올까", "와", "내려", "불어", "나", "저",
	"우리", "여기", "거기", "동네", "밖", "외출", "산책", "조깅", "운동", "출근", "퇴근", "안녕", "고마워",
	"감사", "감사합니다", "네", "응", "추워", "더워", "쌀쌀해", "따뜻해", "시원해", "맑아", "흐려", "나와",
	// english vocabulary, used for tool arguments
	"weather", "forecast", "temperature", "temp", "air", "quality", "dust", "pollen", "mask", "rain",
	"umbrella", "humidity", "wind", "uv", "today", "tomorrow", "now", "current", "here", "outside",
)

// ExtractLocation returns the canonical place name mentioned in text, if any.
// Time expressions, weather vocabulary and conversational fillers are never
// treated as places.
func ExtractLocation(text string) (string, bool) {
	cleaned := timeExpressionRe.ReplaceAllString(text, " ")
	for _, token := range hangulRunRe.FindAllString(cleaned, -1) {
		candidate := stripParticle(token)
		if utf8.RuneCountInString(candidate) < 2 {
			continue
		}
		if IsWeatherTerm(candidate) || IsWeatherTerm(token) || hasVerbEnding(candidate) {
			continue
		}
		return CanonicalPlace(candidate), true
	}
	return "", false
}

// IsWeatherTerm reports whether s is weather vocabulary or filler rather
// than a place name.
func IsWeatherTerm(s string) bool {
	_, ok := weatherTerms[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// CanonicalPlace expands well known short forms to their official
// administrative names. Unknown names are returned trimmed.
func CanonicalPlace(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := canonicalPlaces[trimmed]; ok {
		return canonical
	}
	return trimmed
}

func stripParticle(token string) string {
	if _, ok := canonicalPlaces[token]; ok {
		return token
	}
	for _, p := range particles {
		if !strings.HasSuffix(token, p) {
			continue
		}
		return strings.TrimSuffix(token, p)
	}
	return token
}

// verbEndings close questions and requests; no administrative name ends with them.
var verbEndings = []string{"까", "요", "줘", "워", "래", "니", "냐", "죠", "봐", "네"}

func hasVerbEnding(s string) bool {
	for _, e := range verbEndings {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
