package assistant

import "strings"

// forecastLabels start items that get a blank line above them.
var forecastLabels = []string{"오늘 예상 날씨:", "Today's forecast:"}

// FormatReply strips bold markers and turns "• " bullets into dash items
// under the first line. Running it on its own output is a no-op.
func FormatReply(raw string) string {
	text := strings.ReplaceAll(raw, "**", "")
	var parts []string
	for _, part := range strings.Split(text, "• ") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	lines := []string{parts[0]}
	for _, item := range parts[1:] {
		body := strings.TrimPrefix(item, "- ")
		if hasForecastLabel(body) {
			lines = append(lines, "")
		}
		lines = append(lines, "- "+body)
	}
	return strings.Join(lines, "\n")
}

func hasForecastLabel(item string) bool {
	for _, label := range forecastLabels {
		if strings.HasPrefix(item, label) {
			return true
		}
	}
	return false
}

// AttachGraph adds the graph when one was computed and the user asked about
// temperature, graphs or clothing.
func AttachGraph(resp *ChatResponse, rc ResponseContext, features FeatureSet) {
	if len(rc.Graph) == 0 || !features.Has(FeatureGraph) {
		return
	}
	resp.Graph = rc.Graph
}

// AttachAirSummary adds the dust summary when air quality was fetched and the
// user asked about air, dust or masks.
func AttachAirSummary(resp *ChatResponse, rc ResponseContext, features FeatureSet, lang string) {
	if rc.Air == nil || !(features.Has(FeatureAir) || features.Has(FeatureMask)) {
		return
	}
	resp.Dust = &DustSummary{Value: rc.Air.PM25, Level: rc.Air.Grade.Label(lang)}
}
