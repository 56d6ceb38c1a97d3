package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

type Op string

const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpContains Op = "contains"
	OpPrefix   Op = "prefix"
	OpSuffix   Op = "suffix"
	OpGt       Op = "gt"
	OpLt       Op = "lt"
	OpIsNull   Op = "is_null"
	OpNotNull  Op = "not_null"
)

var opAliases = map[string]Op{
	"=": OpEq, "==": OpEq, "eq": OpEq,
	"!=": OpNe, "<>": OpNe, "ne": OpNe,
	"~": OpContains, "contains": OpContains, "like": OpContains,
	"prefix": OpPrefix, "starts_with": OpPrefix,
	"suffix": OpSuffix, "ends_with": OpSuffix,
	">": OpGt, "gt": OpGt, "after": OpGt,
	"<": OpLt, "lt": OpLt, "before": OpLt,
	"is_null": OpIsNull, "not_null": OpNotNull,
}

type fieldKind int

const (
	textField fieldKind = iota
	boolField
	timeField
)

// columns whitelists the target columns a filter may reference.
var columns = map[string]fieldKind{
	"name":         textField,
	"tags":         textField,
	"records":      textField,
	"validated":    boolField,
	"created_at":   timeField,
	"last_scanned": timeField,
}

// Filter is one typed condition over a target column. Values are always
// bound as parameters.
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value string `json:"value,omitempty"`
}

func (f Filter) String() string {
	if f.Op == OpIsNull || f.Op == OpNotNull {
		return f.Field + " " + string(f.Op)
	}
	return fmt.Sprintf("%s %s %s", f.Field, f.Op, f.Value)
}

func (f Filter) Validate() error {
	kind, ok := columns[f.Field]
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.Field)
	}
	switch f.Op {
	case OpIsNull, OpNotNull:
		return nil
	case OpEq, OpNe:
		if kind == boolField {
			if _, err := strconv.ParseBool(f.Value); err != nil {
				return fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidFilter, f.Field, f.Value)
			}
		}
		return nil
	case OpContains, OpPrefix, OpSuffix:
		if kind != textField {
			return fmt.Errorf("%w: %s does not support %s", ErrInvalidFilter, f.Field, f.Op)
		}
		return nil
	case OpGt, OpLt:
		if kind == boolField {
			return fmt.Errorf("%w: %s does not support %s", ErrInvalidFilter, f.Field, f.Op)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

func (f Filter) apply(q *gorm.DB) (*gorm.DB, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	col := f.Field

	var value any = f.Value
	if columns[col] == boolField && (f.Op == OpEq || f.Op == OpNe) {
		b, _ := strconv.ParseBool(f.Value)
		value = b
	}

	switch f.Op {
	case OpEq:
		return q.Where(col+" = ?", value), nil
	case OpNe:
		return q.Where("("+col+" IS NULL OR "+col+" <> ?)", value), nil
	case OpContains:
		return q.Where(col+` LIKE ? ESCAPE '\'`, "%"+escapeLike(f.Value)+"%"), nil
	case OpPrefix:
		return q.Where(col+` LIKE ? ESCAPE '\'`, escapeLike(f.Value)+"%"), nil
	case OpSuffix:
		return q.Where(col+` LIKE ? ESCAPE '\'`, "%"+escapeLike(f.Value)), nil
	case OpGt:
		return q.Where(col+" > ?", value), nil
	case OpLt:
		return q.Where(col+" < ?", value), nil
	case OpIsNull:
		return q.Where(col + " IS NULL"), nil
	default:
		return q.Where(col + " IS NOT NULL"), nil
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ParseFilter reads "field op value", e.g. "tags contains [cve]" or
// "validated = true". The value is the remainder of the expression.
func ParseFilter(expr string) (Filter, error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, expr)
	}
	op, ok := opAliases[strings.ToLower(parts[1])]
	if !ok {
		return Filter{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, parts[1])
	}

	f := Filter{Field: strings.ToLower(parts[0]), Op: op}
	if op != OpIsNull && op != OpNotNull {
		if len(parts) < 3 {
			return Filter{}, fmt.Errorf("%w: %q is missing a value", ErrInvalidFilter, expr)
		}
		// keep the value's inner spacing as written
		rest := strings.TrimSpace(expr)
		for i := 0; i < 2; i++ {
			rest = strings.TrimSpace(rest[len(strings.Fields(rest)[0]):])
		}
		f.Value = strings.Trim(rest, `"'`)
	}
	return f, f.Validate()
}

var andSplitter = regexp.MustCompile(`(?i)\s+and\s+`)

// ParseWhere parses a conjunction of filter expressions joined by "and".
// An "and" inside quotes or a [bracketed] tag belongs to the value.
func ParseWhere(expr string) ([]Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var filters []Filter
	for _, part := range splitConjunction(expr) {
		f, err := ParseFilter(part)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func splitConjunction(expr string) []string {
	var parts []string
	start := 0
	for _, m := range andSplitter.FindAllStringIndex(expr, -1) {
		if enclosed(expr[start:m[0]]) {
			continue
		}
		parts = append(parts, expr[start:m[0]])
		start = m[1]
	}
	return append(parts, expr[start:])
}

// enclosed reports whether s ends inside an open quote or bracket.
func enclosed(s string) bool {
	var quote rune
	depth := 0
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		}
	}
	return quote != 0 || depth > 0
}
