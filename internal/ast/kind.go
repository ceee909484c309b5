package ast

// Kind tags a Node. Kinds are grouped: items, structure, expressions, patterns, types.
type Kind uint8

const (
	InvalidKind Kind = iota

	// items
	Module
	Function
	Struct
	Field
	Enum
	EnumVariant
	Trait
	Impl
	AssociatedType
	AssociatedConst
	TypeAlias
	ConstItem
	StaticItem
	Use
	UseTree
	ExternCrate
	ExternBlock
	MacroDef
	MacroRule
	MacroInvocation
	Empty

	// structure
	Error
	Attribute
	Visibility
	TokenTree
	GenericParams
	LifetimeParam
	TypeParam
	ConstParam
	WhereClause
	WherePredicate
	Param
	SelfParam
	Block
	Let
	ExprStmt
	Path
	PathSegment
	GenericArgs
	AssocBinding
	Lifetime
	MatchArm
	FieldInit

	// expressions
	ExprLiteral
	ExprPath
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCast
	ExprCall
	ExprMethodCall
	ExprField
	ExprIndex
	ExprTry
	ExprAwait
	ExprTuple
	ExprParen
	ExprArray
	ExprArrayRepeat
	ExprStruct
	ExprIf
	ExprMatch
	ExprWhile
	ExprLoop
	ExprFor
	ExprBreak
	ExprContinue
	ExprReturn
	ExprClosure
	ExprRange
	ExprLet

	// patterns
	PatWild
	PatIdent
	PatLiteral
	PatPath
	PatTupleStruct
	PatStruct
	PatField
	PatTuple
	PatSlice
	PatRef
	PatRange
	PatRest
	PatOr

	// types
	TypePath
	TypeRef
	TypePtr
	TypeTuple
	TypeArray
	TypeSlice
	TypeFn
	TypeImplTrait
	TypeDynTrait
	TypeNever
	TypeInfer

	kindCount
)

var kindNames = [kindCount]string{
	InvalidKind:     "InvalidKind",
	Module:          "Module",
	Function:        "Function",
	Struct:          "Struct",
	Field:           "Field",
	Enum:            "Enum",
	EnumVariant:     "EnumVariant",
	Trait:           "Trait",
	Impl:            "Impl",
	AssociatedType:  "AssociatedType",
	AssociatedConst: "AssociatedConst",
	TypeAlias:       "TypeAlias",
	ConstItem:       "ConstItem",
	StaticItem:      "StaticItem",
	Use:             "Use",
	UseTree:         "UseTree",
	ExternCrate:     "ExternCrate",
	ExternBlock:     "ExternBlock",
	MacroDef:        "MacroDef",
	MacroRule:       "MacroRule",
	MacroInvocation: "MacroInvocation",
	Empty:           "Empty",
	Error:           "Error",
	Attribute:       "Attribute",
	Visibility:      "Visibility",
	TokenTree:       "TokenTree",
	GenericParams:   "GenericParams",
	LifetimeParam:   "LifetimeParam",
	TypeParam:       "TypeParam",
	ConstParam:      "ConstParam",
	WhereClause:     "WhereClause",
	WherePredicate:  "WherePredicate",
	Param:           "Param",
	SelfParam:       "SelfParam",
	Block:           "Block",
	Let:             "Let",
	ExprStmt:        "ExprStmt",
	Path:            "Path",
	PathSegment:     "PathSegment",
	GenericArgs:     "GenericArgs",
	AssocBinding:    "AssocBinding",
	Lifetime:        "Lifetime",
	MatchArm:        "MatchArm",
	FieldInit:       "FieldInit",
	ExprLiteral:     "ExprLiteral",
	ExprPath:        "ExprPath",
	ExprUnary:       "ExprUnary",
	ExprBinary:      "ExprBinary",
	ExprAssign:      "ExprAssign",
	ExprCast:        "ExprCast",
	ExprCall:        "ExprCall",
	ExprMethodCall:  "ExprMethodCall",
	ExprField:       "ExprField",
	ExprIndex:       "ExprIndex",
	ExprTry:         "ExprTry",
	ExprAwait:       "ExprAwait",
	ExprTuple:       "ExprTuple",
	ExprParen:       "ExprParen",
	ExprArray:       "ExprArray",
	ExprArrayRepeat: "ExprArrayRepeat",
	ExprStruct:      "ExprStruct",
	ExprIf:          "ExprIf",
	ExprMatch:       "ExprMatch",
	ExprWhile:       "ExprWhile",
	ExprLoop:        "ExprLoop",
	ExprFor:         "ExprFor",
	ExprBreak:       "ExprBreak",
	ExprContinue:    "ExprContinue",
	ExprReturn:      "ExprReturn",
	ExprClosure:     "ExprClosure",
	ExprRange:       "ExprRange",
	ExprLet:         "ExprLet",
	PatWild:         "PatWild",
	PatIdent:        "PatIdent",
	PatLiteral:      "PatLiteral",
	PatPath:         "PatPath",
	PatTupleStruct:  "PatTupleStruct",
	PatStruct:       "PatStruct",
	PatField:        "PatField",
	PatTuple:        "PatTuple",
	PatSlice:        "PatSlice",
	PatRef:          "PatRef",
	PatRange:        "PatRange",
	PatRest:         "PatRest",
	PatOr:           "PatOr",
	TypePath:        "TypePath",
	TypeRef:         "TypeRef",
	TypePtr:         "TypePtr",
	TypeTuple:       "TypeTuple",
	TypeArray:       "TypeArray",
	TypeSlice:       "TypeSlice",
	TypeFn:          "TypeFn",
	TypeImplTrait:   "TypeImplTrait",
	TypeDynTrait:    "TypeDynTrait",
	TypeNever:       "TypeNever",
	TypeInfer:       "TypeInfer",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// KindCount is the number of node kinds; valid kinds are below it.
const KindCount = int(kindCount)

// IsItem reports whether k can appear as an item of a module, block or body.
func (k Kind) IsItem() bool {
	return k >= Module && k <= Empty
}

// IsExpr reports whether k is an expression. Blocks and macro calls in
// expression position are expressions as well.
func (k Kind) IsExpr() bool {
	return k >= ExprLiteral && k <= ExprLet || k == Block || k == MacroInvocation
}

// IsPat reports whether k is a pattern.
func (k Kind) IsPat() bool {
	return k >= PatWild && k <= PatOr
}

// IsType reports whether k is a type.
func (k Kind) IsType() bool {
	return k >= TypePath && k <= TypeInfer
}

// IsBlockLike reports whether an expression statement of kind k may omit
// the trailing semicolon.
func (k Kind) IsBlockLike() bool {
	switch k {
	case Block, ExprIf, ExprMatch, ExprWhile, ExprLoop, ExprFor:
		return true
	default:
		return false
	}
}
