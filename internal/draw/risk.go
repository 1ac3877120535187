package draw

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonical risk codes
const (
	RiskLow           = "L"
	RiskMedium        = "M"
	RiskHigh          = "H"
	RiskExtremelyHigh = "EH"
)

var riskWords = map[string]string{
	"EXTREMELY HIGH": RiskExtremelyHigh,
	"VERY HIGH":      RiskHigh,
	"HIGH":           RiskHigh,
	"MEDIUM":         RiskMedium,
	"MED":            RiskMedium,
	"MODERATE":       RiskMedium,
	"LOW":            RiskLow,
	"NEGLIGIBLE":     RiskLow,
}

// legacy numeric codes used by older form revisions
var riskNumbers = map[string]string{
	"0": RiskLow,
	"1": RiskMedium,
	"2": RiskHigh,
	"3": RiskExtremelyHigh,
}

var plainNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)

var riskSeverity = map[string]int{
	RiskLow:           1,
	RiskMedium:        2,
	RiskHigh:          3,
	RiskExtremelyHigh: 4,
}

// NormalizeRisk maps a raw risk indicator to L, M, H or EH. Unrecognized
// values come back trimmed but otherwise unchanged; blank input is nil.
func NormalizeRisk(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	upper := strings.ToUpper(Collapse(trimmed))
	if code, ok := riskWords[upper]; ok {
		return &code
	}
	if code, ok := riskNumbers[trimmed]; ok {
		return &code
	}
	if _, ok := riskSeverity[upper]; ok {
		return &upper
	}
	return &trimmed
}

// Severity ranks a canonical code, 0 for anything else
func Severity(code string) int {
	return riskSeverity[strings.ToUpper(strings.TrimSpace(code))]
}

// AggregateRisk returns the most severe canonical code among residuals. When
// none is canonical but every value is a plain decimal number, the largest
// number wins.
func AggregateRisk(residuals []*string) *string {
	var clean []string
	for _, r := range residuals {
		if r == nil {
			continue
		}
		if v := strings.ToUpper(strings.TrimSpace(*r)); v != "" {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	best := ""
	for _, v := range clean {
		if Severity(v) > Severity(best) {
			best = v
		}
	}
	if best != "" {
		return &best
	}

	maxValue := 0.0
	for i, v := range clean {
		if !plainNumber.MatchString(v) {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		if i == 0 || f > maxValue {
			maxValue = f
		}
	}
	result := strconv.Itoa(int(maxValue))
	return &result
}
