package operation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"relais/internal/models"
	"relais/internal/validation"
)

var fieldName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateSchema checks a form definition before it is stored.
func ValidateSchema(schema []models.FormField) error {
	v := validation.New()
	seen := make(map[string]bool, len(schema))

	for i, f := range schema {
		key := fmt.Sprintf("field_schema[%d]", i)

		v.Check(fieldName.MatchString(f.Name), key+".name", "must be lower_snake_case")
		v.Check(!seen[f.Name], key+".name", "is duplicated")
		seen[f.Name] = true

		switch f.Type {
		case models.FieldText, models.FieldNumber, models.FieldPhone, models.FieldEmail:
		case models.FieldSelect:
			v.Check(len(f.Options) > 0, key+".options", "must list at least one option")
		default:
			v.AddError(key+".type", "must be one of text, number, phone, email, select")
		}

		if f.Min != nil && f.Max != nil {
			v.Check(*f.Min <= *f.Max, key+".max", "must not be below min")
		}
		if f.Pattern != "" {
			_, err := regexp.Compile(f.Pattern)
			v.Check(err == nil, key+".pattern", "must be a valid regular expression")
		}
	}
	return v.Err()
}

// ValidateFields checks submitted form values against schema and returns the
// values normalised to the schema: numbers as float64, strings trimmed,
// unknown keys dropped.
func ValidateFields(schema []models.FormField, values map[string]interface{}) (models.JSON, error) {
	v := validation.New()
	out := make(models.JSON, len(schema))

	for _, f := range schema {
		raw, present := values[f.Name]
		if str, ok := raw.(string); ok {
			raw = strings.TrimSpace(str)
		}
		if !present || raw == nil || raw == "" {
			v.Check(!f.Required, f.Name, "is required")
			continue
		}

		if f.Type == models.FieldNumber {
			n, ok := toNumber(raw)
			if !ok {
				v.AddError(f.Name, "must be a number")
				continue
			}
			if f.Min != nil {
				v.Check(n >= *f.Min, f.Name, fmt.Sprintf("must be at least %v", *f.Min))
			}
			if f.Max != nil {
				v.Check(n <= *f.Max, f.Name, fmt.Sprintf("must be at most %v", *f.Max))
			}
			out[f.Name] = n
			continue
		}

		s, ok := raw.(string)
		if !ok {
			v.AddError(f.Name, "must be a string")
			continue
		}

		switch f.Type {
		case models.FieldPhone:
			v.Phone(f.Name, s)
		case models.FieldEmail:
			v.Email(f.Name, s)
		case models.FieldSelect:
			v.Check(contains(f.Options, s), f.Name, fmt.Sprintf("must be one of [%s]", strings.Join(f.Options, " ")))
		}

		if f.Min != nil {
			v.Check(float64(len(s)) >= *f.Min, f.Name, fmt.Sprintf("must be at least %v characters long", *f.Min))
		}
		if f.Max != nil {
			v.Check(float64(len(s)) <= *f.Max, f.Name, fmt.Sprintf("must be at most %v characters long", *f.Max))
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			v.Check(err == nil && re.MatchString(s), f.Name, "has an invalid format")
		}
		out[f.Name] = s
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toNumber(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
