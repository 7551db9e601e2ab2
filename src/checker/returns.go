package checker

import "ea/src/ast"

// stmtReturns implements the statement_returns predicate: a block
// returns iff its last statement returns; an if-else returns iff both arms
// return; a while/for is treated as possibly non-returning even when its
// condition is a literal `true`, since this analysis does no constant
// folding at this stage.
func stmtReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		return blockReturns(n)
	case *ast.IfStmt:
		if n.Else == nil {
			return false
		}
		return blockReturns(n.Then) && blockReturns(n.Else)
	default:
		return false
	}
}

func blockReturns(b *ast.BlockStmt) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	return stmtReturns(b.Stmts[len(b.Stmts)-1])
}
