// Package kind defines the closed tag enumeration every expression node
// carries, and the classification predicates the rest of the core
// dispatches on.
package kind

// Kind is the tag on every expression node. It is a closed enumeration:
// new term shapes are never added by extending an interface hierarchy,
// only by adding a case here and to every switch that dispatches on Kind.
type Kind int

const (
	NONE Kind = iota

	// Structural (types)
	TYPE
	BOOL_TYPE
	FUNCTION_TYPE
	PROOF_TYPE
	QUOTE_TYPE
	ABSTRACT_TYPE

	// Term-forming
	APPLY
	LAMBDA
	CONST
	VARIABLE
	PARAM
	VARIABLE_LIST
	TUPLE
	NIL
	FAIL
	PROGRAM_CONST
	ORACLE

	// Literals
	BOOLEAN
	NUMERAL
	DECIMAL
	HEXADECIMAL
	BINARY
	STRING

	// Literal operators
	EVAL_IS_EQ
	EVAL_IF_THEN_ELSE
	EVAL_REQUIRES
	EVAL_CONS
	EVAL_APPEND
	EVAL_TO_LIST
	EVAL_FROM_LIST
	EVAL_NOT
	EVAL_AND
	EVAL_OR
	EVAL_ADD
	EVAL_MUL
	EVAL_NEG
	EVAL_INT_DIV
	EVAL_RAT_DIV
	EVAL_IS_NEG
	EVAL_IS_ZERO
	EVAL_CONCAT
	EVAL_LENGTH
	EVAL_EXTRACT
	EVAL_TO_BV
	EVAL_TO_INT
	EVAL_TO_RAT
	EVAL_TO_STRING
)

var names = map[Kind]string{
	NONE:              "NONE",
	TYPE:              "TYPE",
	BOOL_TYPE:         "BOOL_TYPE",
	FUNCTION_TYPE:     "FUNCTION_TYPE",
	PROOF_TYPE:        "PROOF_TYPE",
	QUOTE_TYPE:        "QUOTE_TYPE",
	ABSTRACT_TYPE:     "ABSTRACT_TYPE",
	APPLY:             "APPLY",
	LAMBDA:            "LAMBDA",
	CONST:             "CONST",
	VARIABLE:          "VARIABLE",
	PARAM:             "PARAM",
	VARIABLE_LIST:     "VARIABLE_LIST",
	TUPLE:             "TUPLE",
	NIL:               "NIL",
	FAIL:              "FAIL",
	PROGRAM_CONST:     "PROGRAM_CONST",
	ORACLE:            "ORACLE",
	BOOLEAN:           "BOOLEAN",
	NUMERAL:           "NUMERAL",
	DECIMAL:           "DECIMAL",
	HEXADECIMAL:       "HEXADECIMAL",
	BINARY:            "BINARY",
	STRING:            "STRING",
	EVAL_IS_EQ:        "EVAL_IS_EQ",
	EVAL_IF_THEN_ELSE:  "EVAL_IF_THEN_ELSE",
	EVAL_REQUIRES:     "EVAL_REQUIRES",
	EVAL_CONS:         "EVAL_CONS",
	EVAL_APPEND:       "EVAL_APPEND",
	EVAL_TO_LIST:      "EVAL_TO_LIST",
	EVAL_FROM_LIST:    "EVAL_FROM_LIST",
	EVAL_NOT:          "EVAL_NOT",
	EVAL_AND:          "EVAL_AND",
	EVAL_OR:           "EVAL_OR",
	EVAL_ADD:          "EVAL_ADD",
	EVAL_MUL:          "EVAL_MUL",
	EVAL_NEG:          "EVAL_NEG",
	EVAL_INT_DIV:      "EVAL_INT_DIV",
	EVAL_RAT_DIV:      "EVAL_RAT_DIV",
	EVAL_IS_NEG:       "EVAL_IS_NEG",
	EVAL_IS_ZERO:      "EVAL_IS_ZERO",
	EVAL_CONCAT:       "EVAL_CONCAT",
	EVAL_LENGTH:       "EVAL_LENGTH",
	EVAL_EXTRACT:      "EVAL_EXTRACT",
	EVAL_TO_BV:        "EVAL_TO_BV",
	EVAL_TO_INT:       "EVAL_TO_INT",
	EVAL_TO_RAT:       "EVAL_TO_RAT",
	EVAL_TO_STRING:    "EVAL_TO_STRING",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UnknownKind"
}

// literalKinds is the set of kinds carrying a literal.Literal payload.
var literalKinds = map[Kind]bool{
	BOOLEAN:     true,
	NUMERAL:     true,
	DECIMAL:     true,
	HEXADECIMAL: true,
	BINARY:      true,
	STRING:      true,
}

// IsLiteral returns true for the six literal leaf kinds.
func IsLiteral(k Kind) bool { return literalKinds[k] }

// literalOps is the set of EVAL_* operator kinds.
var literalOps = map[Kind]bool{
	EVAL_IS_EQ:        true,
	EVAL_IF_THEN_ELSE: true,
	EVAL_REQUIRES:     true,
	EVAL_CONS:         true,
	EVAL_APPEND:       true,
	EVAL_TO_LIST:      true,
	EVAL_FROM_LIST:    true,
	EVAL_NOT:          true,
	EVAL_AND:          true,
	EVAL_OR:           true,
	EVAL_ADD:          true,
	EVAL_MUL:          true,
	EVAL_NEG:          true,
	EVAL_INT_DIV:      true,
	EVAL_RAT_DIV:      true,
	EVAL_IS_NEG:       true,
	EVAL_IS_ZERO:      true,
	EVAL_CONCAT:       true,
	EVAL_LENGTH:       true,
	EVAL_EXTRACT:      true,
	EVAL_TO_BV:        true,
	EVAL_TO_INT:       true,
	EVAL_TO_RAT:       true,
	EVAL_TO_STRING:    true,
}

// IsLiteralOp returns true if k is one of the EVAL_* operator kinds.
func IsLiteralOp(k Kind) bool { return literalOps[k] }

// arity0/1/2/3 mirror the type checker's checkArity table (spec.md §4.3.2).
// Kinds absent from all four sets are considered variable-arity.
var arity0 = map[Kind]bool{NIL: true}

var arity1 = map[Kind]bool{
	PROOF_TYPE:     true,
	EVAL_NOT:       true,
	EVAL_NEG:       true,
	EVAL_IS_NEG:    true,
	EVAL_IS_ZERO:   true,
	EVAL_LENGTH:    true,
	EVAL_TO_INT:    true,
	EVAL_TO_RAT:    true,
	EVAL_TO_STRING: true,
}

var arity2 = map[Kind]bool{
	EVAL_IS_EQ:     true,
	EVAL_TO_LIST:   true,
	EVAL_FROM_LIST: true,
	EVAL_AND:       true,
	EVAL_OR:        true,
	EVAL_ADD:       true,
	EVAL_MUL:       true,
	EVAL_INT_DIV:   true,
	EVAL_RAT_DIV:   true,
	EVAL_CONCAT:    true,
	EVAL_TO_BV:     true,
}

var arity3 = map[Kind]bool{
	EVAL_REQUIRES:     true,
	EVAL_IF_THEN_ELSE: true,
	EVAL_CONS:         true,
	EVAL_APPEND:       true,
	EVAL_EXTRACT:      true,
}

// CheckArity reports whether k accepts nargs children. Kinds with no
// fixed-arity entry (APPLY, LAMBDA, user constants, ...) accept any arity.
func CheckArity(k Kind, nargs int) bool {
	if arity0[k] {
		return nargs == 0
	}
	if arity1[k] {
		return nargs == 1
	}
	if arity2[k] {
		return nargs == 2
	}
	if arity3[k] {
		return nargs == 3
	}
	return true
}
