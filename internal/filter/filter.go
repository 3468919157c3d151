package filter

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mzagorenko/clinic/internal/apperr"
)

type FieldType string

const (
	String  FieldType = "string"
	Boolean FieldType = "boolean"
	Integer FieldType = "integer"
	Date    FieldType = "date"
)

const (
	RuleEquals             = "equals"
	RuleNotEquals          = "not_equals"
	RuleContains           = "contains"
	RuleNotContains        = "not_contains"
	RuleStartsWith         = "starts_with"
	RuleEndsWith           = "ends_with"
	RuleLessThan           = "less_than"
	RuleLessThanOrEqual    = "less_than_or_equal"
	RuleGreaterThan        = "greater_than"
	RuleGreaterThanOrEqual = "greater_than_or_equal"
)

const (
	GlobalEvery = "every"
	GlobalSome  = "some"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

const dateLayout = "2006-01-02"

var rulesByType = map[FieldType][]string{
	String:  {RuleEquals, RuleNotEquals, RuleContains, RuleNotContains, RuleStartsWith, RuleEndsWith},
	Boolean: {RuleEquals, RuleNotEquals},
	Integer: {RuleEquals, RuleNotEquals, RuleLessThan, RuleLessThanOrEqual, RuleGreaterThan, RuleGreaterThanOrEqual},
	Date:    {RuleEquals, RuleNotEquals, RuleLessThan, RuleLessThanOrEqual, RuleGreaterThan, RuleGreaterThanOrEqual},
}

type Field struct {
	Name string
	Type FieldType
}

// Registry is the static table of filterable fields, their semantic types
// and the comparison rules each type allows. Built once, read-only after.
type Registry struct {
	fields map[string]Field
}

func NewRegistry(fields ...Field) *Registry {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return &Registry{fields: m}
}

func (r *Registry) Rules(field string) []string {
	f, ok := r.fields[field]
	if !ok {
		return nil
	}
	return rulesByType[f.Type]
}

// Rule is one caller-supplied filter.
type Rule struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value"`
}

type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

func (r *Registry) ValidateFilter(f Rule) error {
	field, ok := r.fields[strings.ToLower(f.Field)]
	if !ok {
		return apperr.ErrInvalidField
	}

	valid := false
	for _, rule := range rulesByType[field.Type] {
		if rule == strings.ToLower(f.Rule) {
			valid = true
			break
		}
	}
	if !valid {
		return apperr.ErrInvalidRule
	}

	switch field.Type {
	case Date:
		if _, err := time.Parse(dateLayout, f.Value); err != nil {
			return apperr.ErrInvalidValueFormat
		}
	case Integer:
		if _, err := strconv.Atoi(f.Value); err != nil {
			return apperr.ErrInvalidValueFormat
		}
	}
	return nil
}

func (r *Registry) ValidateSort(s Sort) error {
	if _, ok := r.fields[strings.ToLower(s.Field)]; !ok {
		return apperr.ErrInvalidField
	}
	order := strings.ToLower(s.Order)
	if order != OrderAsc && order != OrderDesc {
		return apperr.ErrInvalidRule
	}
	return nil
}

// Scope translates validated filters into a single WHERE condition combined
// with AND for "every" or OR for "some".
func (r *Registry) Scope(filters []Rule, globalRule string) (func(*gorm.DB) *gorm.DB, error) {
	var combinator string
	switch globalRule {
	case GlobalEvery:
		combinator = " AND "
	case GlobalSome:
		combinator = " OR "
	default:
		return nil, apperr.ErrUnsupportedGlobalRule
	}

	queries := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if err := r.ValidateFilter(f); err != nil {
			return nil, err
		}
		query, arg := r.condition(f)
		queries = append(queries, query)
		args = append(args, arg)
	}

	return func(db *gorm.DB) *gorm.DB {
		if len(queries) == 0 {
			return db
		}
		return db.Where("("+strings.Join(queries, combinator)+")", args...)
	}, nil
}

// OrderScope translates validated sorting rules into ORDER BY clauses,
// applied in the order given.
func (r *Registry) OrderScope(sorts []Sort) (func(*gorm.DB) *gorm.DB, error) {
	clauses := make([]string, 0, len(sorts))
	for _, s := range sorts {
		if err := r.ValidateSort(s); err != nil {
			return nil, err
		}
		dir := "ASC"
		if strings.ToLower(s.Order) == OrderDesc {
			dir = "DESC"
		}
		clauses = append(clauses, strings.ToLower(s.Field)+" "+dir)
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, c := range clauses {
			db = db.Order(c)
		}
		return db
	}, nil
}

func (r *Registry) condition(f Rule) (string, any) {
	field := r.fields[strings.ToLower(f.Field)]
	column := field.Name
	rule := strings.ToLower(f.Rule)

	switch field.Type {
	case String:
		// string matching is case-insensitive; LOWER on both sides keeps
		// the same behavior on postgres and sqlite
		lhs := "LOWER(" + column + ")"
		switch rule {
		case RuleEquals:
			return lhs + " LIKE LOWER(?)", f.Value
		case RuleNotEquals:
			return lhs + " NOT LIKE LOWER(?)", f.Value
		case RuleContains:
			return lhs + " LIKE LOWER(?)", "%" + f.Value + "%"
		case RuleNotContains:
			return lhs + " NOT LIKE LOWER(?)", "%" + f.Value + "%"
		case RuleStartsWith:
			return lhs + " LIKE LOWER(?)", f.Value + "%"
		case RuleEndsWith:
			return lhs + " LIKE LOWER(?)", "%" + f.Value
		}
	case Boolean:
		value := strings.EqualFold(f.Value, "true")
		if rule == RuleNotEquals {
			return column + " <> ?", value
		}
		return column + " = ?", value
	case Integer:
		n, _ := strconv.Atoi(f.Value)
		return column + " " + comparison(rule) + " ?", n
	case Date:
		d, _ := time.Parse(dateLayout, f.Value)
		return column + " " + comparison(rule) + " ?", d.Format(dateLayout)
	}
	return "1 = ?", false
}

func comparison(rule string) string {
	switch rule {
	case RuleEquals:
		return "="
	case RuleNotEquals:
		return "<>"
	case RuleLessThan:
		return "<"
	case RuleLessThanOrEqual:
		return "<="
	case RuleGreaterThan:
		return ">"
	case RuleGreaterThanOrEqual:
		return ">="
	}
	return "="
}
