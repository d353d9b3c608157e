// Package predicate holds the boolean expression trees filter components
// compile selections into. Trees are plain comparable values bound to a
// caller supplied Parameter; they are turned into SQL or evaluated in memory
// by the encoders in this package and never execute anything themselves.
package predicate

// Parameter is the variable an expression is bound to, typically the table
// alias of the queried entity set.
type Parameter struct {
	Name string
}

// NewParameter returns a parameter named name.
func NewParameter(name string) Parameter {
	return Parameter{Name: name}
}

// Property references an attribute stored in the parameter's properties
// document.
func (p Parameter) Property(key string) Member {
	return Member{Parameter: p, Name: key, Property: true}
}

// Column references a top level field of the parameter.
func (p Parameter) Column(name string) Member {
	return Member{Parameter: p, Name: name}
}

// Member is an access of a field or property on the bound parameter.
type Member struct {
	Parameter Parameter
	Name      string
	Property  bool
}

// Kind identifies the node type of an Expression.
type Kind string

const (
	KindConstant    Kind = "CONSTANT"
	KindComparison  Kind = "COMPARISON"
	KindMembership  Kind = "MEMBERSHIP"
	KindRange       Kind = "RANGE"
	KindBlank       Kind = "BLANK"
	KindConjunction Kind = "CONJUNCTION"
	KindNegation    Kind = "NEGATION"
)

// Expression is implemented by every node type. Use a type switch to reach
// the node data.
type Expression interface {
	Kind() Kind

	expressionMarker()
}

// Operator is the relation of a Comparison.
type Operator string

const (
	OpEqual              Operator = "EQUAL"
	OpStartsWith         Operator = "STARTS_WITH"
	OpEndsWith           Operator = "ENDS_WITH"
	OpContains           Operator = "CONTAINS"
	OpMatches            Operator = "MATCHES"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpLessThan           Operator = "LESS_THAN"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
)

// Constant is a literal true or false.
type Constant struct {
	Value bool
}

// Comparison relates a member to a literal operand. Text relations are case
// insensitive.
type Comparison struct {
	Op    Operator
	Left  Member
	Right string
}

// Membership is true when the member, or any element of it when it holds a
// JSON list, is one of Values. A KeySet member holds a comma separated key
// set and matches when any of its keys is one of Values.
type Membership struct {
	Left   Member
	Values []string
	KeySet bool
}

// Range bounds a member inclusively. An empty bound is open.
type Range struct {
	Left Member
	Low  string
	High string
}

// Blank is true when the member is missing, null or the empty string.
type Blank struct {
	Left Member
}

// ConjunctionOp joins the children of a Conjunction.
type ConjunctionOp string

const (
	ConjunctionAnd ConjunctionOp = "AND"
	ConjunctionOr  ConjunctionOp = "OR"
)

// Conjunction combines two or more children.
type Conjunction struct {
	Op       ConjunctionOp
	Children []Expression
}

// Negation inverts its child.
type Negation struct {
	Child Expression
}

func (Constant) Kind() Kind    { return KindConstant }
func (Comparison) Kind() Kind  { return KindComparison }
func (Membership) Kind() Kind  { return KindMembership }
func (Range) Kind() Kind       { return KindRange }
func (Blank) Kind() Kind       { return KindBlank }
func (Conjunction) Kind() Kind { return KindConjunction }
func (Negation) Kind() Kind    { return KindNegation }

func (Constant) expressionMarker()    {}
func (Comparison) expressionMarker()  {}
func (Membership) expressionMarker()  {}
func (Range) expressionMarker()       {}
func (Blank) expressionMarker()       {}
func (Conjunction) expressionMarker() {}
func (Negation) expressionMarker()    {}

// True is the pass-all predicate broken or empty filters degrade to.
func True() Expression {
	return Constant{Value: true}
}

// False matches nothing.
func False() Expression {
	return Constant{Value: false}
}

// IsTrue reports whether expr is the constant true.
func IsTrue(expr Expression) bool {
	c, ok := expr.(Constant)
	return ok && c.Value
}

// IsFalse reports whether expr is the constant false.
func IsFalse(expr Expression) bool {
	c, ok := expr.(Constant)
	return ok && !c.Value
}

// Not negates expr, folding constants and double negation.
func Not(expr Expression) Expression {
	switch e := expr.(type) {
	case nil:
		return False()
	case Constant:
		return Constant{Value: !e.Value}
	case Negation:
		return e.Child
	}
	return Negation{Child: expr}
}

// And combines children, dropping true constants. A false child makes the
// result false; no children left yields true.
func And(children ...Expression) Expression {
	return combine(ConjunctionAnd, children)
}

// Or combines children, dropping false constants. A true child makes the
// result true; no children left yields false.
func Or(children ...Expression) Expression {
	return combine(ConjunctionOr, children)
}

func combine(op ConjunctionOp, children []Expression) Expression {
	identity := op == ConjunctionAnd

	kept := make([]Expression, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		if c, ok := child.(Constant); ok {
			if c.Value == identity {
				continue
			}
			return Constant{Value: !identity}
		}
		kept = append(kept, child)
	}

	switch len(kept) {
	case 0:
		return Constant{Value: identity}
	case 1:
		return kept[0]
	}
	return Conjunction{Op: op, Children: kept}
}
