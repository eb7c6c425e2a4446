package routing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/newscred/lead-router/storage/data"
)

// Rule fields are often named after the comparison they perform, e.g. `precoMaiorQue` compares the
// `preco` attribute. When a lead has no attribute by the exact rule field these suffixes are stripped.
var comparisonSuffixes = []string{"MaiorQue", "MenorQue", "Entre", "Minimo", "Maximo", "Min", "Max", "GreaterThan", "LessThan", "Between"}

// Evaluate returns whether the lead satisfies the rule. Missing attributes, non numeric values for
// numeric operators and invalid rules all evaluate to false.
func Evaluate(lead *data.Lead, rule data.Rule) bool {
	if rule.Operator() == data.OperatorAny {
		return true
	}
	if lead == nil || !rule.IsValid() {
		return false
	}
	value, found := resolveAttribute(lead, rule.Field())
	if !found || value == nil {
		return false
	}
	switch rule.Operator() {
	case data.OperatorContains:
		return strings.Contains(strings.ToLower(asText(value)), strings.ToLower(rule.Text()))
	case data.OperatorEquals:
		return strings.EqualFold(asText(value), rule.Text())
	case data.OperatorGreaterThan:
		number, ok := asNumber(value)
		return ok && number > rule.Threshold()
	case data.OperatorLessThan:
		number, ok := asNumber(value)
		return ok && number < rule.Threshold()
	case data.OperatorBetween:
		number, ok := asNumber(value)
		low, high := rule.Range()
		return ok && number >= low && number <= high
	default:
		return false
	}
}

// MatchesAll returns true when every rule matches; an empty rule set matches any lead
func MatchesAll(lead *data.Lead, rules []data.Rule) bool {
	for _, rule := range rules {
		if !Evaluate(lead, rule) {
			return false
		}
	}
	return true
}

func resolveAttribute(lead *data.Lead, field string) (interface{}, bool) {
	if value, ok := lead.Get(field); ok {
		return value, true
	}
	for _, suffix := range comparisonSuffixes {
		if len(field) > len(suffix) && strings.HasSuffix(field, suffix) {
			if value, ok := lead.Get(strings.TrimSuffix(field, suffix)); ok {
				return value, true
			}
		}
	}
	return nil, false
}

func asText(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	case []interface{}:
		parts := make([]string, 0, len(typed))
		for _, part := range typed {
			parts = append(parts, asText(part))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(typed, ",")
	default:
		return fmt.Sprint(value)
	}
}

func asNumber(value interface{}) (float64, bool) {
	var number float64
	switch typed := value.(type) {
	case float64:
		number = typed
	case float32:
		number = float64(typed)
	case int:
		number = float64(typed)
	case int32:
		number = float64(typed)
	case int64:
		number = float64(typed)
	case uint:
		number = float64(typed)
	case uint64:
		number = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		number = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		number = parsed
	default:
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}
