package predicate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
)

// Evaluator runs a compiled predicate against entities in memory. It is used
// to preview filters without a database round trip.
//
// Membership over JSON arrays is matched by the SQL encoder only. Comma
// separated key sets are split in both.
type Evaluator struct {
	param   Parameter
	source  string
	program *vm.Program
}

// NewEvaluator compiles e into an expr program.
func NewEvaluator(e Expression, param Parameter) (*Evaluator, error) {
	if !identifier.MatchString(param.Name) {
		return nil, errors.Errorf("parameter name %q is not a valid identifier", param.Name)
	}

	source := ExprSource(e)
	program, err := expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile predicate %q", source)
	}

	return &Evaluator{param: param, source: source, program: program}, nil
}

// Source returns the expr source the evaluator runs.
func (ev *Evaluator) Source() string {
	return ev.source
}

// Match reports whether entity satisfies the predicate.
func (ev *Evaluator) Match(entity domain.Entity) (bool, error) {
	props := entity.Properties
	if props == nil {
		props = map[string]any{}
	}

	env := map[string]any{
		ev.param.Name: map[string]any{
			"id":          entity.ID.String(),
			"entity_type": entity.EntityType,
			"created_at":  entity.CreatedAt,
			"updated_at":  entity.UpdatedAt,
			"properties":  props,
		},
	}

	out, err := vm.Run(ev.program, env)
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate predicate for entity %s", entity.ID)
	}
	result, ok := out.(bool)
	return ok && result, nil
}

// Filter returns the entities that satisfy the predicate. Evaluation errors
// exclude the entity.
func (ev *Evaluator) Filter(entities []domain.Entity) []domain.Entity {
	matched := make([]domain.Entity, 0, len(entities))
	for _, entity := range entities {
		if ok, err := ev.Match(entity); err == nil && ok {
			matched = append(matched, entity)
		}
	}
	return matched
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExprSource renders e as an expr-lang boolean expression.
func ExprSource(e Expression) string {
	switch ex := e.(type) {
	case nil:
		return "true"
	case Constant:
		return strconv.FormatBool(ex.Value)
	case Comparison:
		return exprComparison(ex)
	case Membership:
		values := make([]string, len(ex.Values))
		for i, v := range ex.Values {
			values[i] = strconv.Quote(strings.ToLower(v))
		}
		if ex.KeySet {
			return "any(split(" + exprText(ex.Left) + `, ","), {trim(#) in [` + strings.Join(values, ", ") + "]})"
		}
		return "(" + exprText(ex.Left) + " in [" + strings.Join(values, ", ") + "])"
	case Range:
		var parts []string
		if ex.Low != "" {
			parts = append(parts, exprOrdered(ex.Left, ">=", ex.Low))
		}
		if ex.High != "" {
			parts = append(parts, exprOrdered(ex.Left, "<=", ex.High))
		}
		if len(parts) == 0 {
			return "true"
		}
		return "(" + strings.Join(parts, " and ") + ")"
	case Blank:
		return "(" + exprString(ex.Left) + ` == "")`
	case Conjunction:
		if len(ex.Children) == 0 {
			return strconv.FormatBool(ex.Op == ConjunctionAnd)
		}
		parts := make([]string, len(ex.Children))
		for i, child := range ex.Children {
			parts[i] = ExprSource(child)
		}
		return "(" + strings.Join(parts, " "+strings.ToLower(string(ex.Op))+" ") + ")"
	case Negation:
		return "not (" + ExprSource(ex.Child) + ")"
	}
	return "true"
}

var exprOperators = map[Operator]string{
	OpEqual:              "==",
	OpStartsWith:         "startsWith",
	OpEndsWith:           "endsWith",
	OpContains:           "contains",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
}

func exprComparison(c Comparison) string {
	switch c.Op {
	case OpEqual, OpStartsWith, OpEndsWith, OpContains:
		return "(" + exprText(c.Left) + " " + exprOperators[c.Op] + " " + strconv.Quote(strings.ToLower(c.Right)) + ")"
	case OpMatches:
		return "(" + exprString(c.Left) + " matches " + strconv.Quote("(?i)"+c.Right) + ")"
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return exprOrdered(c.Left, exprOperators[c.Op], c.Right)
	}
	return "true"
}

func exprOrdered(m Member, op, operand string) string {
	if isNumeric(operand) {
		return "(float(" + exprValue(m, "0") + ") " + op + " " + strings.TrimSpace(operand) + ")"
	}
	return "(" + exprString(m) + " " + op + " " + strconv.Quote(operand) + ")"
}

func exprValue(m Member, def string) string {
	var access string
	if m.Property {
		access = m.Parameter.Name + ".properties[" + strconv.Quote(m.Name) + "]"
	} else {
		access = m.Parameter.Name + "[" + strconv.Quote(m.Name) + "]"
	}
	return "(" + access + " ?? " + def + ")"
}

func exprString(m Member) string {
	return "string(" + exprValue(m, `""`) + ")"
}

func exprText(m Member) string {
	return "lower(" + exprString(m) + ")"
}
