package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls
// f for each node; if f returns false the node's children are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	visitChildren(node, f)
}

// visitChildren visits all children of a node
func visitChildren(node Node, f func(Node) bool) {
	switch n := node.(type) {
	case *Program:
		for _, fn := range n.Functions {
			Inspect(fn, f)
		}

	case *Function:
		Inspect(&n.Name, f)
		for _, param := range n.Params {
			Inspect(param, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}

	case *Param:
		Inspect(&n.Name, f)

	case *BlockStmt:
		for _, stmt := range n.Stmts {
			Inspect(stmt, f)
		}

	case *ExprStmt:
		Inspect(n.Expr, f)

	case *DeclStmt:
		Inspect(&n.Name, f)
		if n.Init != nil {
			Inspect(n.Init, f)
		}

	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}

	case *WhileStmt:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)

	case *ForStmt:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
		if n.Cond != nil {
			Inspect(n.Cond, f)
		}
		if n.Post != nil {
			Inspect(n.Post, f)
		}
		Inspect(n.Body, f)

	case *ReturnStmt:
		if n.Value != nil {
			Inspect(n.Value, f)
		}

	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)

	case *UnaryExpr:
		Inspect(n.Operand, f)

	case *AssignExpr:
		Inspect(n.Target, f)
		Inspect(n.Value, f)

	case *IndexExpr:
		Inspect(n.Target, f)
		Inspect(n.Index, f)

	case *FieldExpr:
		Inspect(n.Target, f)
		Inspect(&n.Field, f)
	}
}

// Identifiers returns every name spelled in the tree rooted at node
func Identifiers(node Node) map[string]bool {
	names := make(map[string]bool)
	Inspect(node, func(n Node) bool {
		switch n := n.(type) {
		case *Ident:
			names[n.Value] = true
		case *IdentExpr:
			names[n.Name] = true
		}
		return true
	})
	return names
}
