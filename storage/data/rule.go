package data

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// RuleOperator is the comparison a Rule applies to a lead attribute
type RuleOperator string

const (
	// OperatorContains is a case-insensitive substring match
	OperatorContains RuleOperator = "contains"
	// OperatorEquals is a case-insensitive equality match
	OperatorEquals RuleOperator = "equals"
	// OperatorGreaterThan is a strict numeric comparison
	OperatorGreaterThan RuleOperator = "greaterThan"
	// OperatorLessThan is a strict numeric comparison
	OperatorLessThan RuleOperator = "lessThan"
	// OperatorBetween is an inclusive numeric range
	OperatorBetween RuleOperator = "between"
	// OperatorAny always matches
	OperatorAny RuleOperator = "any"
	// OperatorInvalid marks a rule whose configuration could not be understood; it never matches
	OperatorInvalid RuleOperator = "invalid"

	ruleExpressionSeparator = ":"
	ruleRangeSeparator      = ".."
)

var (
	// ErrMalformedRule is returned when a rule's operator and value do not fit each other
	ErrMalformedRule = errors.New("malformed rule")
)

// Rule is a single matching predicate over one lead attribute. The operand is fixed by the
// constructor used, so an operator can never be paired with a value of the wrong shape.
type Rule struct {
	field    string
	operator RuleOperator
	text     string
	low      float64
	high     float64
	raw      json.RawMessage
}

// NewContainsRule creates a rule matching when the attribute contains text, ignoring case
func NewContainsRule(field, text string) Rule {
	return Rule{field: field, operator: OperatorContains, text: text}
}

// NewEqualsRule creates a rule matching when the attribute equals text, ignoring case
func NewEqualsRule(field, text string) Rule {
	return Rule{field: field, operator: OperatorEquals, text: text}
}

// NewGreaterThanRule creates a rule matching numeric attributes strictly greater than value
func NewGreaterThanRule(field string, value float64) Rule {
	return Rule{field: field, operator: OperatorGreaterThan, low: value}
}

// NewLessThanRule creates a rule matching numeric attributes strictly less than value
func NewLessThanRule(field string, value float64) Rule {
	return Rule{field: field, operator: OperatorLessThan, high: value}
}

// NewBetweenRule creates a rule matching numeric attributes in [low, high]
func NewBetweenRule(field string, low, high float64) Rule {
	return Rule{field: field, operator: OperatorBetween, low: low, high: high}
}

// NewAnyRule creates a rule that matches every lead
func NewAnyRule(field string) Rule {
	return Rule{field: field, operator: OperatorAny}
}

func newInvalidRule(field string, raw json.RawMessage) Rule {
	return Rule{field: field, operator: OperatorInvalid, raw: raw}
}

// Field is the lead attribute name the rule inspects
func (rule Rule) Field() string {
	return rule.field
}

// Operator returns the rule operator
func (rule Rule) Operator() RuleOperator {
	return rule.operator
}

// Text is the operand of contains and equals rules
func (rule Rule) Text() string {
	return rule.text
}

// Threshold is the operand of greaterThan and lessThan rules
func (rule Rule) Threshold() float64 {
	if rule.operator == OperatorLessThan {
		return rule.high
	}
	return rule.low
}

// Range is the inclusive operand of between rules
func (rule Rule) Range() (float64, float64) {
	return rule.low, rule.high
}

// IsValid returns false for rules that were malformed at parse time
func (rule Rule) IsValid() bool {
	return rule.operator != OperatorInvalid && rule.operator != ""
}

func (rule Rule) String() string {
	switch rule.operator {
	case OperatorContains, OperatorEquals:
		return rule.field + ruleExpressionSeparator + string(rule.operator) + ruleExpressionSeparator + rule.text
	case OperatorGreaterThan, OperatorLessThan:
		return rule.field + ruleExpressionSeparator + string(rule.operator) + ruleExpressionSeparator + formatNumber(rule.Threshold())
	case OperatorBetween:
		return rule.field + ruleExpressionSeparator + string(rule.operator) + ruleExpressionSeparator + formatNumber(rule.low) + ruleRangeSeparator + formatNumber(rule.high)
	case OperatorAny:
		return rule.field + ruleExpressionSeparator + string(rule.operator)
	default:
		return rule.field + ruleExpressionSeparator + string(OperatorInvalid)
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

type ruleDocument struct {
	Field    string          `json:"field"`
	Operator RuleOperator    `json:"operator"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON writes the rule as {field, operator, value}
func (rule Rule) MarshalJSON() ([]byte, error) {
	doc := ruleDocument{Field: rule.field, Operator: rule.operator}
	var value interface{}
	switch rule.operator {
	case OperatorContains, OperatorEquals:
		value = rule.text
	case OperatorGreaterThan, OperatorLessThan:
		value = rule.Threshold()
	case OperatorBetween:
		value = []float64{rule.low, rule.high}
	case OperatorInvalid:
		doc.Value = rule.raw
	}
	if value != nil {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		doc.Value = encoded
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads {field, operator, value}; a value that does not fit the operator results in an
// invalid rule rather than an error so that one bad rule never blocks loading a queue
func (rule *Rule) UnmarshalJSON(raw []byte) error {
	doc := ruleDocument{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	var value interface{}
	if len(doc.Value) > 0 {
		if err := json.Unmarshal(doc.Value, &value); err != nil {
			*rule = newInvalidRule(doc.Field, doc.Value)
			return nil
		}
	}
	parsed, err := ParseRule(doc.Field, string(doc.Operator), value)
	if err != nil {
		parsed.raw = doc.Value
	}
	*rule = parsed
	return nil
}

// ParseRule builds a Rule from a loosely typed operator/value pair. When the pair is malformed the
// returned rule is an invalid rule that never matches, alongside ErrMalformedRule.
func ParseRule(field, operator string, value interface{}) (Rule, error) {
	var encoded json.RawMessage
	if value != nil {
		encoded, _ = json.Marshal(value)
	}
	fail := func() (Rule, error) {
		return newInvalidRule(field, encoded), fmt.Errorf("%w: %s %s %v", ErrMalformedRule, field, operator, value)
	}
	if len(strings.TrimSpace(field)) <= 0 {
		return fail()
	}
	switch RuleOperator(operator) {
	case OperatorContains, OperatorEquals:
		text, ok := valueAsText(value)
		if !ok {
			return fail()
		}
		if RuleOperator(operator) == OperatorContains {
			return NewContainsRule(field, text), nil
		}
		return NewEqualsRule(field, text), nil
	case OperatorGreaterThan, OperatorLessThan:
		number, ok := valueAsNumber(value)
		if !ok {
			return fail()
		}
		if RuleOperator(operator) == OperatorGreaterThan {
			return NewGreaterThanRule(field, number), nil
		}
		return NewLessThanRule(field, number), nil
	case OperatorBetween:
		bounds, ok := value.([]interface{})
		if !ok || len(bounds) != 2 {
			return fail()
		}
		low, lowOk := valueAsNumber(bounds[0])
		high, highOk := valueAsNumber(bounds[1])
		if !lowOk || !highOk {
			return fail()
		}
		return NewBetweenRule(field, low, high), nil
	case OperatorAny:
		return NewAnyRule(field), nil
	default:
		return fail()
	}
}

// ParseRuleExpression parses the `field:operator:value` form used in configuration files; between
// takes its range as `low..high` and any needs no value.
func ParseRuleExpression(expression string) (Rule, error) {
	parts := strings.SplitN(strings.TrimSpace(expression), ruleExpressionSeparator, 3)
	if len(parts) < 2 {
		return newInvalidRule(expression, nil), fmt.Errorf("%w: %s", ErrMalformedRule, expression)
	}
	field, operator := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	var value interface{}
	if len(parts) == 3 {
		rawValue := strings.TrimSpace(parts[2])
		if RuleOperator(operator) == OperatorBetween {
			bounds := strings.SplitN(rawValue, ruleRangeSeparator, 2)
			if len(bounds) == 2 {
				value = []interface{}{strings.TrimSpace(bounds[0]), strings.TrimSpace(bounds[1])}
			} else {
				value = rawValue
			}
		} else {
			value = rawValue
		}
	}
	return ParseRule(field, operator, value)
}

func valueAsText(value interface{}) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case float64:
		return formatNumber(typed), true
	case int:
		return strconv.Itoa(typed), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func valueAsNumber(value interface{}) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case string:
		number, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return number, err == nil
	default:
		return 0, false
	}
}

// Rules is the persisted rule set of a queue
type Rules []Rule

// Scan reads rules from a JSON column
func (rules *Rules) Scan(value interface{}) error {
	*rules = Rules{}
	return scanJSONColumn(value, rules)
}

// Value writes rules as a JSON column
func (rules Rules) Value() (driver.Value, error) {
	if rules == nil {
		return jsonColumnValue(Rules{})
	}
	return jsonColumnValue([]Rule(rules))
}
