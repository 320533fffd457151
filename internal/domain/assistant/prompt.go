package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/lumee/internal/domain/profile"
)

var domainLabels = map[Domain][2]string{
	DomainWeather: {"날씨", "weather"},
	DomainAir:     {"미세먼지", "air quality"},
	DomainPollen:  {"꽃가루", "pollen"},
}

func domainLabel(d Domain, lang string) string {
	labels, ok := domainLabels[d]
	if !ok {
		return string(d)
	}
	if lang == "ko" {
		return labels[0]
	}
	return labels[1]
}

func clarificationMessage(lang string) string {
	if lang == "ko" {
		return "어느 지역의 날씨를 알려드릴까요? 지역 이름을 함께 말씀해 주시거나 위치 권한을 허용해 주세요. 📍"
	}
	return "Which location should I check? Please name a place or allow location access. 📍"
}

func notFoundMessage(name, lang string) string {
	if lang == "ko" {
		return fmt.Sprintf("죄송해요. %q 지역의 위치 정보를 찾을 수 없어요.", name)
	}
	return fmt.Sprintf("Sorry, I couldn't find location information for %q.", name)
}

func unknownInfoMessage(lang string) string {
	if lang == "ko" {
		return "죄송해요, 그 정보는 알 수 없었어요. 😥 다른 질문이 있으신가요?"
	}
	return "Sorry, I couldn't find that information. 😥 Do you have any other questions?"
}

func unavailableMessage(domains []Domain, lang string) string {
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, domainLabel(d, lang))
	}
	if lang == "ko" {
		return fmt.Sprintf("죄송해요. 지금은 %s 정보를 가져올 수 없었어요. 잠시 후 다시 물어봐 주세요. 🙏", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Sorry, I couldn't get %s data right now. Please try again in a moment. 🙏", strings.Join(names, ", "))
}

func languageLock(lang string) string {
	if lang == "ko" {
		return "[중요] 무조건 한국어로만 답변하세요. 영어 단어나 영어 문장을 섞지 마세요."
	}
	return "[IMPORTANT] You must respond ONLY in English. Do not use any Korean words or sentences."
}

func toolSelectionPrompt(lang string, now time.Time) string {
	var b strings.Builder
	b.WriteString("You route weather questions to data tools. Always call at least one tool for any question about weather, air, dust, masks, pollen, clothing or outdoor plans.\n")
	b.WriteString("- get_weather: temperature, rain, humidity, wind, UV, clouds, visibility, dew point, sunrise and sunset.\n")
	b.WriteString("- get_air_quality: fine dust and air quality. Masks need get_air_quality and get_pollen_info.\n")
	b.WriteString("- get_pollen_info: pollen and allergies.\n")
	b.WriteString("Set location only when the user names a place in this message; otherwise use CURRENT_LOCATION. Never put weather words such as humidity or temperature in location.\n")
	b.WriteString("Copy the user's date phrase into date (for example \"내일\", \"다음주 월요일\", \"tomorrow 3pm\") or use YYYY-MM-DD. Omit date for right now.\n")
	b.WriteString("Set graph_needed to true when the user asks about temperature, a graph, or what to wear.\n")
	b.WriteString("If the question has nothing to do with weather, answer without tools.\n")
	fmt.Fprintf(&b, "Current time: %s. User language: %s.", now.Format(time.RFC3339), lang)
	return b.String()
}

// finalPrompt is the system message for the answer-writing call.
func finalPrompt(lang string, p *profile.Profile, rc ResponseContext, features FeatureSet) string {
	if lang == "ko" {
		return finalPromptKO(p, rc, features)
	}
	return finalPromptEN(p, rc, features)
}

func finalPromptKO(p *profile.Profile, rc ResponseContext, features FeatureSet) string {
	var b strings.Builder
	b.WriteString("당신은 친절한 날씨 비서 'Lumee'입니다. 3~4문장으로 자연스럽게 답하고 이모지를 적절히 사용하세요.\n")
	if p != nil && p.Name != "" {
		fmt.Fprintf(&b, "사용자를 '%s님'이라고 불러 주세요.\n", p.Name)
	}
	fmt.Fprintf(&b, "\n[대상]\n- 지역: %s\n- 날짜: %s\n", rc.Location, rc.DateLabel)
	if p != nil {
		b.WriteString("\n[사용자 정보]\n")
		b.WriteString(p.Summary("ko"))
		b.WriteString("\n")
	}

	b.WriteString("\n[답변 규칙]\n")
	if !features.Specific() {
		b.WriteString("- 일반적인 날씨 질문입니다. 지역 이름을 먼저 말하고 날씨, 미세먼지, 꽃가루를 요약한 뒤 민감 요소와 취미를 고려한 맞춤 조언을 해 주세요.\n")
	} else {
		b.WriteString("- 질문에 포함된 항목만 답하세요. 묻지 않은 정보는 말하지 마세요.\n")
		for _, f := range features.List() {
			if rule, ok := keywordRulesKO[f]; ok {
				b.WriteString("- " + rule + "\n")
			}
		}
	}
	if len(rc.Unavailable) > 0 {
		names := make([]string, 0, len(rc.Unavailable))
		for _, d := range rc.Unavailable {
			names = append(names, domainLabel(d, "ko"))
		}
		fmt.Fprintf(&b, "- %s 정보는 가져오지 못했어요. 해당 항목은 확인할 수 없다고 짧게 안내하세요.\n", strings.Join(names, ", "))
	}
	b.WriteString("- 날씨와 관계없는 질문에는 \"" + unknownInfoMessage("ko") + "\"라고만 답하세요.\n")
	b.WriteString("\n[번역 기준]\n")
	b.WriteString("- 자외선 단계: low=낮음, moderate=보통, high=높음, very_high=매우 높음, extreme=위험\n")
	b.WriteString("- 바람: 0~2m/s 고요함, 2~4m/s 약한 바람, 4~6m/s 산들바람, 6~8m/s 다소 강한 바람, 8m/s 이상 강한 바람\n")
	b.WriteString("- 이슬점 체감: dry=건조함, comfortable=쾌적함, slightly_humid=약간 습함, humid=습함, oppressive=매우 후텁지근함\n")
	b.WriteString("- 꽃가루 종류와 위험도는 typeLabel, riskLabel 값을 그대로 사용하세요.\n")
	return b.String()
}

func finalPromptEN(p *profile.Profile, rc ResponseContext, features FeatureSet) string {
	var b strings.Builder
	b.WriteString("You are Lumee, a friendly weather assistant. Answer naturally in 3-4 sentences and feel free to use emojis.\n")
	if p != nil && p.Name != "" {
		fmt.Fprintf(&b, "Address the user as %s.\n", p.Name)
	}
	fmt.Fprintf(&b, "\n[Target]\n- Location: %s\n- Date: %s\n", rc.Location, rc.DateLabel)
	if p != nil {
		b.WriteString("\n[User profile]\n")
		b.WriteString(p.Summary("en"))
		b.WriteString("\n")
	}

	b.WriteString("\n[Rules]\n")
	if !features.Specific() {
		b.WriteString("- This is a general weather question. Mention the location first, summarize weather, air quality and pollen, then give personalized advice based on the sensitive factors and hobbies.\n")
	} else {
		b.WriteString("- Answer only the items the user asked about. Do not mention anything else.\n")
		for _, f := range features.List() {
			if rule, ok := keywordRulesEN[f]; ok {
				b.WriteString("- " + rule + "\n")
			}
		}
	}
	if len(rc.Unavailable) > 0 {
		names := make([]string, 0, len(rc.Unavailable))
		for _, d := range rc.Unavailable {
			names = append(names, domainLabel(d, "en"))
		}
		fmt.Fprintf(&b, "- %s data could not be retrieved. Say briefly that it is unavailable.\n", strings.Join(names, ", "))
	}
	b.WriteString("- For questions unrelated to weather reply only: \"" + unknownInfoMessage("en") + "\"\n")
	b.WriteString("\n[Reference]\n")
	b.WriteString("- Wind: 0-2 m/s calm, 2-4 m/s light breeze, 4-6 m/s gentle breeze, 6-8 m/s fresh wind, 8+ m/s strong wind\n")
	b.WriteString("- UV levels and dew comfort codes use underscores; write them as plain words.\n")
	b.WriteString("- Use typeLabel and riskLabel for pollen.\n")
	return b.String()
}

var keywordRulesKO = map[Feature]string{
	FeatureGraph:      "기온 질문이면 현재 기온, 체감온도, 최고/최저 기온만 말하세요. 옷차림 질문이면 기온에 맞는 옷차림을 추천하세요.",
	FeatureRain:       "비 질문이면 강수 확률(pop)을 말하고 30% 이상이면 우산을 챙기라고 하세요.",
	FeatureUV:         "자외선 질문이면 자외선 단계만 말하고 수치는 말하지 마세요.",
	FeatureHumidity:   "습도 질문이면 습도(%)만 말하세요.",
	FeatureVisibility: "가시거리 질문이면 가시거리를 km 단위로 말하세요.",
	FeatureSunTime:    "일출/일몰 질문이면 sunrise, sunset 시각만 말하세요.",
	FeatureWind:       "바람 질문이면 풍향과 바람 세기를 번역 기준의 표현으로 말하세요.",
	FeatureCloud:      "구름 질문이면 구름 양(%)과 하늘 상태를 말하세요.",
	FeatureDewPoint:   "이슬점 질문이면 이슬점과 체감(dewComfort)을 말하세요.",
	FeatureAir:        "미세먼지 질문이면 수치 없이 등급만 말하고 마스크 필요 여부를 알려 주세요.",
	FeatureMask:       "마스크 질문이면 미세먼지 등급과 꽃가루 위험도를 함께 고려해 마스크 착용을 조언하세요.",
	FeaturePollen:     "꽃가루 질문이면 가장 위험한 꽃가루 종류와 위험도를 말하세요.",
}

var keywordRulesEN = map[Feature]string{
	FeatureGraph:      "For temperature, give only the current temperature, feels-like and the high/low. For clothing, recommend an outfit for the temperature.",
	FeatureRain:       "For rain, give the precipitation chance (pop) and suggest an umbrella when it is 30% or more.",
	FeatureUV:         "For UV, give only the UV level, not the number.",
	FeatureHumidity:   "For humidity, give only the humidity percentage.",
	FeatureVisibility: "For visibility, give the visibility in km.",
	FeatureSunTime:    "For sunrise or sunset, give only those times.",
	FeatureWind:       "For wind, give the direction and describe the strength using the wind reference.",
	FeatureCloud:      "For clouds, give the cloud cover percentage and sky condition.",
	FeatureDewPoint:   "For dew point, give the dew point and how it feels (dewComfort).",
	FeatureAir:        "For air quality, give the grade without numbers and say whether a mask is needed.",
	FeatureMask:       "For masks, combine the air quality grade and pollen risk into mask advice.",
	FeaturePollen:     "For pollen, name the riskiest pollen type and its risk level.",
}
