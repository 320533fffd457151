package assistant

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Feature is an intent signal detected in an utterance.
type Feature string

const (
	FeatureGeneral    Feature = "general"
	FeatureAir        Feature = "air"
	FeatureMask       Feature = "mask"
	FeaturePollen     Feature = "pollen"
	FeatureGraph      Feature = "graph"
	FeatureRain       Feature = "rain"
	FeatureHumidity   Feature = "humidity"
	FeatureVisibility Feature = "visibility"
	FeatureSunTime    Feature = "sun_time"
	FeatureUV         Feature = "uv"
	FeatureWind       Feature = "wind"
	FeatureCloud      Feature = "cloud"
	FeatureDewPoint   Feature = "dew_point"
)

// Domain is a data source the orchestrator can fetch.
type Domain string

const (
	DomainWeather Domain = "weather"
	DomainAir     Domain = "air_quality"
	DomainPollen  Domain = "pollen"
)

var allDomains = []Domain{DomainWeather, DomainAir, DomainPollen}

type featureRule struct {
	feature  Feature
	domains  []Domain
	triggers []string
	// words matches the ASCII triggers as whole words.
	words *regexp.Regexp
}

// featureRules is matched case-insensitively. Hangul triggers match as
// substrings so particles may follow them; ASCII triggers match whole words.
// Triggers are lowercase.
var featureRules = []featureRule{
	{FeatureAir, []Domain{DomainAir}, []string{
		"미세먼지", "초미세먼지", "공기질", "공기", "황사", "먼지", "숨쉬기", "air", "quality", "dust", "dusty",
	}, nil},
	{FeatureMask, []Domain{DomainAir, DomainPollen}, []string{
		"마스크", "mask", "masks",
	}, nil},
	{FeaturePollen, []Domain{DomainPollen}, []string{
		"꽃가루", "알레르기", "pollen", "allergy", "allergies",
	}, nil},
	{FeatureGraph, []Domain{DomainWeather}, []string{
		"기온", "온도", "그래프", "temperature", "temperatures", "temp", "graph", "뭐 입을까", "뭘 입을까", "뭐입지", "옷",
		"what should i wear", "what to wear", "clothing", "outfit",
	}, nil},
	{FeatureRain, []Domain{DomainWeather}, []string{
		"우산", "비", "소나기", "강수확률", "강수량", "강수", "rain", "rainy", "raining", "umbrella",
	}, nil},
	{FeatureHumidity, []Domain{DomainWeather}, []string{
		"습도", "습하", "습해", "건조", "촉촉", "축축", "humidity", "humid",
	}, nil},
	{FeatureVisibility, []Domain{DomainWeather}, []string{
		"가시거리", "시야", "안개", "흐릿", "앞이 잘 보일까", "visibility", "fog", "foggy",
	}, nil},
	{FeatureSunTime, []Domain{DomainWeather}, []string{
		"일출", "일몰", "해뜨는", "해 뜨는", "해지는", "해 지는", "sunrise", "sunset",
	}, nil},
	{FeatureUV, []Domain{DomainWeather}, []string{
		"자외선", "햇빛", "선크림", "썬크림", "태양", "햇살", "uv", "sunscreen",
	}, nil},
	{FeatureWind, []Domain{DomainWeather}, []string{
		"바람", "풍속", "풍향", "강풍", "wind", "windy",
	}, nil},
	{FeatureCloud, []Domain{DomainWeather}, []string{
		"구름", "흐림", "흐려", "맑음", "하늘 상태", "cloud", "clouds", "cloudy",
	}, nil},
	{FeatureDewPoint, []Domain{DomainWeather}, []string{
		"이슬점", "끈적", "불쾌", "dew",
	}, nil},
	{FeatureGeneral, allDomains, []string{
		"날씨", "weather", "forecast", "예보",
	}, nil},
}

func init() {
	for i := range featureRules {
		featureRules[i].words = wordPattern(featureRules[i].triggers)
	}
}

func wordPattern(triggers []string) *regexp.Regexp {
	var words []string
	for _, t := range triggers {
		if isASCII(t) {
			words = append(words, regexp.QuoteMeta(t))
		}
	}
	if len(words) == 0 {
		return nil
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (r featureRule) matches(lower string) bool {
	if r.words != nil && r.words.MatchString(lower) {
		return true
	}
	for _, trigger := range r.triggers {
		if !isASCII(trigger) && strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// FeatureSet is the evaluated rule table for one utterance.
type FeatureSet map[Feature]struct{}

// DetectFeatures evaluates the rule table once against text.
func DetectFeatures(text string) FeatureSet {
	lower := strings.ToLower(text)
	set := FeatureSet{}
	for _, rule := range featureRules {
		if rule.matches(lower) {
			set[rule.feature] = struct{}{}
		}
	}
	return set
}

func (s FeatureSet) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

func (s FeatureSet) Empty() bool {
	return len(s) == 0
}

// Specific reports whether anything beyond the general weather intent was detected.
func (s FeatureSet) Specific() bool {
	for f := range s {
		if f != FeatureGeneral {
			return true
		}
	}
	return false
}

// List returns the features in a stable order.
func (s FeatureSet) List() []Feature {
	out := make([]Feature, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Domains maps the features to the data sources they need, in canonical order.
func (s FeatureSet) Domains() []Domain {
	needed := map[Domain]bool{}
	for _, rule := range featureRules {
		if s.Has(rule.feature) {
			for _, d := range rule.domains {
				needed[d] = true
			}
		}
	}
	var out []Domain
	for _, d := range allDomains {
		if needed[d] {
			out = append(out, d)
		}
	}
	return out
}

var hangulRe = regexp.MustCompile(`[ㄱ-ㅎㅏ-ㅣ가-힣]`)

// DetectLanguage returns "ko" when text contains Hangul and "en" otherwise.
func DetectLanguage(text string) string {
	if hangulRe.MatchString(text) {
		return "ko"
	}
	return "en"
}
