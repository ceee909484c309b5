package parser

import (
	"oxide/internal/ast"
	"oxide/internal/token"
)

// Приоритеты бинарных операторов: чем больше, тем сильнее связывает.
const (
	precNone = iota
	precAssign
	precRange
	precOr
	precAnd
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdditive
	precMultiplicative
	precCast
)

// getBinaryOperatorPrec returns the precedence of k and whether it is
// right-associative. Zero means k is not a binary operator.
func getBinaryOperatorPrec(k token.Kind) (prec int, rightAssoc bool) {
	switch k {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign,
		token.PercentAssign, token.CaretAssign, token.AmpAssign, token.PipeAssign,
		token.ShlAssign, token.ShrAssign:
		return precAssign, true
	case token.DotDot, token.DotDotEq:
		return precRange, false
	case token.OrOr:
		return precOr, false
	case token.AndAnd:
		return precAnd, false
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precCompare, false
	case token.Pipe:
		return precBitOr, false
	case token.Caret:
		return precBitXor, false
	case token.Amp:
		return precBitAnd, false
	case token.Shl, token.Shr:
		return precShift, false
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false
	case token.KwAs:
		return precCast, false
	default:
		return precNone, false
	}
}

func isComparison(k token.Kind) bool {
	prec, _ := getBinaryOperatorPrec(k)
	return prec == precCompare
}

var binaryOps = map[token.Kind]ast.Op{
	token.Plus:          ast.OpAdd,
	token.Minus:         ast.OpSub,
	token.Star:          ast.OpMul,
	token.Slash:         ast.OpDiv,
	token.Percent:       ast.OpRem,
	token.AndAnd:        ast.OpAnd,
	token.OrOr:          ast.OpOr,
	token.Amp:           ast.OpBitAnd,
	token.Pipe:          ast.OpBitOr,
	token.Caret:         ast.OpBitXor,
	token.Shl:           ast.OpShl,
	token.Shr:           ast.OpShr,
	token.EqEq:          ast.OpEq,
	token.BangEq:        ast.OpNe,
	token.Lt:            ast.OpLt,
	token.LtEq:          ast.OpLe,
	token.Gt:            ast.OpGt,
	token.GtEq:          ast.OpGe,
	token.Assign:        ast.OpAssign,
	token.PlusAssign:    ast.OpAddAssign,
	token.MinusAssign:   ast.OpSubAssign,
	token.StarAssign:    ast.OpMulAssign,
	token.SlashAssign:   ast.OpDivAssign,
	token.PercentAssign: ast.OpRemAssign,
	token.AmpAssign:     ast.OpBitAndAssign,
	token.PipeAssign:    ast.OpBitOrAssign,
	token.CaretAssign:   ast.OpBitXorAssign,
	token.ShlAssign:     ast.OpShlAssign,
	token.ShrAssign:     ast.OpShrAssign,
	token.DotDot:        ast.OpRange,
	token.DotDotEq:      ast.OpRangeInclusive,
}

// tokenKindToBinaryOp maps an operator token to its ast.Op.
func tokenKindToBinaryOp(k token.Kind) (ast.Op, bool) {
	op, ok := binaryOps[k]
	return op, ok
}
