package ast

// Role names the relation of a child to its parent.
type Role uint8

const (
	RoleNone Role = iota
	RoleAttr
	RoleVis
	RoleGenerics
	RoleWhere
	RoleParam
	RoleRet
	RoleBody
	RoleItem
	RoleMember
	RoleType
	RoleValue
	RoleTrait
	RoleSelfType
	RoleBound
	RoleCallee
	RoleArg
	RoleReceiver
	RoleLHS
	RoleRHS
	RoleOperand
	RoleCond
	RoleThen
	RoleElse
	RoleScrutinee
	RoleArm
	RolePat
	RoleGuard
	RoleIter
	RoleElem
	RoleIndex
	RoleField
	RoleBase
	RolePath
	RoleSegment
	RoleGenericArg
	RoleQSelf
	RoleMatcher
	RoleTranscriber
	RoleRule
	RoleTokens
	RoleStmt
	RoleTail
	RoleLen
	RoleLifetime
	RoleTree
	RoleError

	roleCount
)

var roleNames = [roleCount]string{
	RoleNone:        "",
	RoleAttr:        "attr",
	RoleVis:         "vis",
	RoleGenerics:    "generics",
	RoleWhere:       "where",
	RoleParam:       "param",
	RoleRet:         "ret",
	RoleBody:        "body",
	RoleItem:        "item",
	RoleMember:      "member",
	RoleType:        "type",
	RoleValue:       "value",
	RoleTrait:       "trait",
	RoleSelfType:    "self_type",
	RoleBound:       "bound",
	RoleCallee:      "callee",
	RoleArg:         "arg",
	RoleReceiver:    "receiver",
	RoleLHS:         "lhs",
	RoleRHS:         "rhs",
	RoleOperand:     "operand",
	RoleCond:        "cond",
	RoleThen:        "then",
	RoleElse:        "else",
	RoleScrutinee:   "scrutinee",
	RoleArm:         "arm",
	RolePat:         "pat",
	RoleGuard:       "guard",
	RoleIter:        "iter",
	RoleElem:        "elem",
	RoleIndex:       "index",
	RoleField:       "field",
	RoleBase:        "base",
	RolePath:        "path",
	RoleSegment:     "segment",
	RoleGenericArg:  "generic_arg",
	RoleQSelf:       "qself",
	RoleMatcher:     "matcher",
	RoleTranscriber: "transcriber",
	RoleRule:        "rule",
	RoleTokens:      "tokens",
	RoleStmt:        "stmt",
	RoleTail:        "tail",
	RoleLen:         "len",
	RoleLifetime:    "lifetime",
	RoleTree:        "tree",
	RoleError:       "error",
}

func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return "role(?)"
}

// Child is an edge from a parent to one of its children.
type Child struct {
	ID   NodeID
	Role Role
}

// C is shorthand for a Child literal; invalid ids are dropped by the builder.
func C(role Role, id NodeID) Child {
	return Child{ID: id, Role: role}
}
