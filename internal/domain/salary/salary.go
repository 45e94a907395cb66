package salary

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	thousand    = 1000
	tenThousand = 10000

	monthsPerYear = 12
	daysPerMonth  = 30
	hoursPerMonth = 160
)

var (
	numberPattern     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	paychecksPattern  = regexp.MustCompile(`(?i)[·•x×*]?\s*\d+\s*(?:薪|pay(?:checks?)?(?:/year|/yr)?)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	thousandSuffix    = regexp.MustCompile(`\d[kK]`)
)

var negotiableMarkers = []string{"面议", "negotiable", "tbd"}

var (
	annualMarkers = []string{"年", "/year", "/yr"}
	dailyMarkers  = []string{"天", "日", "/day"}
	hourlyMarkers = []string{"时", "/hour", "/hr"}
)

// Normalize converts a free-text salary descriptor such as "15-25K·13薪", "1.5-2万" or
// "300元/天" into a monthly range in whole yuan. Both values are nil when the text is
// empty, negotiable or carries no number.
func Normalize(text string) (min, max *int) {
	s := paychecksPattern.ReplaceAllString(text, "")
	s = whitespacePattern.ReplaceAllString(s, "")
	if s == "" || isNegotiable(s) {
		return nil, nil
	}

	tokens := numberPattern.FindAllString(s, -1)
	if len(tokens) == 0 {
		return nil, nil
	}

	low, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return nil, nil
	}
	high, err := strconv.ParseFloat(tokens[len(tokens)-1], 64)
	if err != nil {
		return nil, nil
	}

	factor := magnitude(s) * cadence(s)
	minValue, ok := truncate(low * factor)
	if !ok {
		return nil, nil
	}
	maxValue, ok := truncate(high * factor)
	if !ok {
		return nil, nil
	}
	return &minValue, &maxValue
}

func isNegotiable(s string) bool {
	return containsAny(strings.ToLower(s), negotiableMarkers)
}

func magnitude(s string) float64 {
	switch {
	case strings.Contains(s, "万"):
		return tenThousand
	case strings.Contains(s, "千"):
		return thousand
	case thousandSuffix.MatchString(s):
		return thousand
	default:
		return 1
	}
}

func cadence(s string) float64 {
	lower := strings.ToLower(s)
	switch {
	case containsAny(lower, annualMarkers):
		return 1.0 / monthsPerYear
	case containsAny(lower, dailyMarkers):
		return daysPerMonth
	case containsAny(lower, hourlyMarkers):
		return hoursPerMonth
	default:
		return 1
	}
}

// truncate drops the fractional part, absorbing float error so that 2.3*1000 stays 2300.
// Values beyond int32 are not salaries and are rejected.
func truncate(v float64) (int, bool) {
	v = math.Floor(v + 1e-6)
	if math.IsNaN(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
