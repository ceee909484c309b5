package ast

// Op is the operator of unary, binary, assignment and range expressions.
type Op uint8

const (
	OpNone Op = iota

	// binary
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// assignment
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpBitAndAssign
	OpBitOrAssign
	OpBitXorAssign
	OpShlAssign
	OpShrAssign

	// unary
	OpNeg
	OpNot
	OpDeref
	OpRef
	OpRefMut

	// range
	OpRange          // ..
	OpRangeInclusive // ..=

	opCount
)

var opText = [opCount]string{
	OpNone:           "",
	OpAdd:            "+",
	OpSub:            "-",
	OpMul:            "*",
	OpDiv:            "/",
	OpRem:            "%",
	OpAnd:            "&&",
	OpOr:             "||",
	OpBitAnd:         "&",
	OpBitOr:          "|",
	OpBitXor:         "^",
	OpShl:            "<<",
	OpShr:            ">>",
	OpEq:             "==",
	OpNe:             "!=",
	OpLt:             "<",
	OpLe:             "<=",
	OpGt:             ">",
	OpGe:             ">=",
	OpAssign:         "=",
	OpAddAssign:      "+=",
	OpSubAssign:      "-=",
	OpMulAssign:      "*=",
	OpDivAssign:      "/=",
	OpRemAssign:      "%=",
	OpBitAndAssign:   "&=",
	OpBitOrAssign:    "|=",
	OpBitXorAssign:   "^=",
	OpShlAssign:      "<<=",
	OpShrAssign:      ">>=",
	OpNeg:            "-",
	OpNot:            "!",
	OpDeref:          "*",
	OpRef:            "&",
	OpRefMut:         "&mut",
	OpRange:          "..",
	OpRangeInclusive: "..=",
}

func (o Op) String() string {
	if o < opCount {
		return opText[o]
	}
	return "op(?)"
}

// Shape is the form of an enum variant or struct: `A`, `A(T)` or `A { x: T }`.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeUnit
	ShapeTuple
	ShapeStruct
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "Unit"
	case ShapeTuple:
		return "Tuple"
	case ShapeStruct:
		return "Struct"
	default:
		return ""
	}
}

// Flags carry modifiers that do not need a node of their own.
type Flags uint32

const (
	FlagMut      Flags = 1 << iota // let mut, &mut, *mut, static mut, mut self
	FlagRef                        // ref binding, &self
	FlagUnsafe                     // unsafe fn/trait/impl/block
	FlagAsync                      // async fn/block/closure
	FlagConst                      // const fn, const block, *const
	FlagExtern                     // extern fn
	FlagMove                       // move closure
	FlagInner                      // #![...] attribute
	FlagNegative                   // impl !Trait
	FlagAuto                       // auto trait
	FlagNoBody                     // fn signature without body, `mod m;`
	FlagDefault                    // default fn in impl
	FlagMaybe                      // ?Sized bound
	FlagSemi                       // statement ended by ';'
	FlagTurbofish                  // ::<...> generic args
	FlagGlob                       // use a::*
	FlagGlobalPath                 // ::a::b
	FlagParen                      // (...) token tree / macro args
	FlagBracket                    // [...]
	FlagBrace                      // {...}
	FlagShorthand                  // struct field `x` for `x: x`
	FlagLabel                      // loop/block with 'label (Name holds it)
	FlagRecovered                  // node completed after a syntax error
)

// Has reports whether all bits of f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

var flagNames = [...]string{
	"mut", "ref", "unsafe", "async", "const", "extern", "move", "inner",
	"negative", "auto", "nobody", "default", "maybe", "semi", "turbofish",
	"glob", "global", "paren", "bracket", "brace", "shorthand", "label",
	"recovered",
}

// Names lists the set flags in bit order.
func (fl Flags) Names() []string {
	var out []string
	for i, name := range flagNames {
		if fl&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}
