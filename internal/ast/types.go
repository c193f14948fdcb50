package ast

type NodeType int

const (
	// Special / error
	ILLEGAL NodeType = iota

	// High-level constructs
	PROGRAM
	IDENT

	// Functions
	FUNCTION
	PARAM

	// Statements
	BLOCK_STMT
	EXPR_STMT
	DECL_STMT
	IF_STMT
	WHILE_STMT
	FOR_STMT
	RETURN_STMT

	// Expressions
	INT_LITERAL
	IDENT_EXPR
	BINARY_EXPR
	UNARY_EXPR
	ASSIGN_EXPR
	INDEX_EXPR
	FIELD_EXPR
)

var nodeTypeNames = [...]string{
	ILLEGAL:     "ILLEGAL",
	PROGRAM:     "PROGRAM",
	IDENT:       "IDENT",
	FUNCTION:    "FUNCTION",
	PARAM:       "PARAM",
	BLOCK_STMT:  "BLOCK_STMT",
	EXPR_STMT:   "EXPR_STMT",
	DECL_STMT:   "DECL_STMT",
	IF_STMT:     "IF_STMT",
	WHILE_STMT:  "WHILE_STMT",
	FOR_STMT:    "FOR_STMT",
	RETURN_STMT: "RETURN_STMT",
	INT_LITERAL: "INT_LITERAL",
	IDENT_EXPR:  "IDENT_EXPR",
	BINARY_EXPR: "BINARY_EXPR",
	UNARY_EXPR:  "UNARY_EXPR",
	ASSIGN_EXPR: "ASSIGN_EXPR",
	INDEX_EXPR:  "INDEX_EXPR",
	FIELD_EXPR:  "FIELD_EXPR",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "NodeType(?)"
	}
	return nodeTypeNames[t]
}
