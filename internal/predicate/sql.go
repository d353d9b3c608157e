package predicate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SQLOptions customises the PostgreSQL encoding.
type SQLOptions struct {
	// PropertiesColumn is the JSONB column holding attribute values.
	// Defaults to "properties".
	PropertiesColumn string
	// ColumnMapping renames column members to storage column names.
	ColumnMapping map[string]string
}

// SQLEncoder encodes expressions into PostgreSQL boolean conditions with
// positional arguments. Attribute values are read from a JSONB properties
// column.
type SQLEncoder struct {
	opts SQLOptions
}

// NewSQLEncoder creates an encoder. If opts is nil, defaults are used.
func NewSQLEncoder(opts *SQLOptions) *SQLEncoder {
	e := &SQLEncoder{}
	if opts != nil {
		e.opts = *opts
	}
	if e.opts.PropertiesColumn == "" {
		e.opts.PropertiesColumn = "properties"
	}
	return e
}

// Encode returns the condition and its arguments. Placeholders start at $1.
func (e *SQLEncoder) Encode(expr Expression) (string, []any) {
	return e.EncodeFrom(expr, 0)
}

// EncodeFrom encodes expr numbering placeholders after offset existing
// arguments, so the condition can be appended to a query that already binds
// offset values.
func (e *SQLEncoder) EncodeFrom(expr Expression, offset int) (string, []any) {
	b := &sqlBuilder{offset: offset}
	clause := e.encode(expr, b)
	return clause, b.args
}

type sqlBuilder struct {
	offset int
	args   []any
}

func (b *sqlBuilder) addArg(value any) int {
	b.args = append(b.args, value)
	return b.offset + len(b.args)
}

func (b *sqlBuilder) placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

func (e *SQLEncoder) encode(expr Expression, b *sqlBuilder) string {
	switch ex := expr.(type) {
	case nil:
		return "TRUE"
	case Constant:
		if ex.Value {
			return "TRUE"
		}
		return "FALSE"
	case Comparison:
		return e.encodeComparison(ex, b)
	case Membership:
		return e.encodeMembership(ex, b)
	case Range:
		return e.encodeRange(ex, b)
	case Blank:
		return fmt.Sprintf("COALESCE(%s, '') = ''", e.member(ex.Left, b))
	case Conjunction:
		parts := make([]string, 0, len(ex.Children))
		for _, child := range ex.Children {
			parts = append(parts, e.encode(child, b))
		}
		if len(parts) == 0 {
			if ex.Op == ConjunctionOr {
				return "FALSE"
			}
			return "TRUE"
		}
		return "(" + strings.Join(parts, " "+string(ex.Op)+" ") + ")"
	case Negation:
		return "NOT (" + e.encode(ex.Child, b) + ")"
	}
	return "TRUE"
}

// member renders the text value of m.
func (e *SQLEncoder) member(m Member, b *sqlBuilder) string {
	alias := pgx.Identifier{m.Parameter.Name}.Sanitize()
	if m.Property {
		keyIdx := b.addArg(m.Name)
		return fmt.Sprintf("%s.%s ->> %s::text", alias, pgx.Identifier{e.opts.PropertiesColumn}.Sanitize(), b.placeholder(keyIdx))
	}
	column := m.Name
	if mapped, ok := e.opts.ColumnMapping[column]; ok {
		column = mapped
	}
	return fmt.Sprintf("%s::text", pgx.Identifier{m.Parameter.Name, column}.Sanitize())
}

func (e *SQLEncoder) encodeComparison(c Comparison, b *sqlBuilder) string {
	value := e.member(c.Left, b)
	text := fmt.Sprintf("lower(COALESCE(%s, ''))", value)

	switch c.Op {
	case OpEqual:
		idx := b.addArg(strings.ToLower(c.Right))
		return fmt.Sprintf("%s = %s", text, b.placeholder(idx))
	case OpStartsWith:
		idx := b.addArg(escapeLike(strings.ToLower(c.Right)) + "%")
		return fmt.Sprintf("%s LIKE %s ESCAPE '\\'", text, b.placeholder(idx))
	case OpEndsWith:
		idx := b.addArg("%" + escapeLike(strings.ToLower(c.Right)))
		return fmt.Sprintf("%s LIKE %s ESCAPE '\\'", text, b.placeholder(idx))
	case OpContains:
		idx := b.addArg("%" + escapeLike(strings.ToLower(c.Right)) + "%")
		return fmt.Sprintf("%s LIKE %s ESCAPE '\\'", text, b.placeholder(idx))
	case OpMatches:
		idx := b.addArg(c.Right)
		return fmt.Sprintf("COALESCE(%s, '') ~* %s", value, b.placeholder(idx))
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return orderedComparison(value, sqlOperators[c.Op], c.Right, b)
	}
	return "TRUE"
}

var sqlOperators = map[Operator]string{
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
}

// numericPattern guards the numeric cast so non numeric values compare as
// NULL instead of failing the query.
const numericPattern = `'^\s*-?[0-9]+(\.[0-9]+)?\s*$'`

func orderedComparison(value, op, operand string, b *sqlBuilder) string {
	if isNumeric(operand) {
		idx := b.addArg(strings.TrimSpace(operand))
		return fmt.Sprintf("(CASE WHEN %s ~ %s THEN (%s)::numeric END) %s %s::numeric",
			value, numericPattern, value, op, b.placeholder(idx))
	}
	idx := b.addArg(operand)
	return fmt.Sprintf("%s %s %s", value, op, b.placeholder(idx))
}

func (e *SQLEncoder) encodeRange(r Range, b *sqlBuilder) string {
	var parts []string
	if r.Low != "" {
		parts = append(parts, orderedComparison(e.member(r.Left, b), ">=", r.Low, b))
	}
	if r.High != "" {
		parts = append(parts, orderedComparison(e.member(r.Left, b), "<=", r.High, b))
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func (e *SQLEncoder) encodeMembership(m Membership, b *sqlBuilder) string {
	if len(m.Values) == 0 {
		return "FALSE"
	}
	values := make([]string, len(m.Values))
	for i, v := range m.Values {
		values[i] = strings.ToLower(v)
	}
	arrIdx := b.addArg(values)
	arr := b.placeholder(arrIdx)

	if m.KeySet {
		return fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(string_to_array(%s, ',')) AS item(val) "+
			"WHERE lower(trim(item.val)) = ANY(%s::text[]))", e.member(m.Left, b), arr)
	}

	scalar := fmt.Sprintf("lower(%s) = ANY(%s::text[])", e.member(m.Left, b), arr)
	if !m.Left.Property {
		return scalar
	}

	alias := pgx.Identifier{m.Left.Parameter.Name}.Sanitize()
	props := pgx.Identifier{e.opts.PropertiesColumn}.Sanitize()
	keyIdx := b.addArg(m.Left.Name)
	key := b.placeholder(keyIdx)
	return fmt.Sprintf("(%s OR EXISTS (SELECT 1 FROM jsonb_array_elements_text("+
		"CASE WHEN jsonb_typeof(%s.%s -> %s::text) = 'array' THEN %s.%s -> %s::text ELSE '[]'::jsonb END"+
		") AS arr(val) WHERE lower(arr.val) = ANY(%s::text[])))",
		scalar, alias, props, key, alias, props, key, arr)
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}

var numericValue = regexp.MustCompile(`^\s*-?[0-9]+(\.[0-9]+)?\s*$`)

func isNumeric(value string) bool {
	return numericValue.MatchString(value)
}
