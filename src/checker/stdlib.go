package checker

import (
	"ea/src/ast"
	"ea/src/runtimeabi"
	"ea/src/token"
)

// abiTypeToEa converts a runtimeabi.ABIType to the EaType a call to that
// method produces or accepts at the Eä surface. Opaque normally surfaces
// as the owning stdlib type (a fresh handle of the same container/string/
// file kind) — except Vec's get/pop, where the opaque handle boxes the
// element value rather than another Vec, so those two resolve to the
// element type instead. CString surfaces as string; Void surfaces as Unit.
func abiTypeToEa(t runtimeabi.ABIType, owner, method string) ast.EaType {
	switch t {
	case runtimeabi.I32:
		return ast.Primitive{Kind: token.I32}
	case runtimeabi.I64:
		return ast.Primitive{Kind: token.I64}
	case runtimeabi.Void:
		return ast.Unit{}
	case runtimeabi.CString:
		return ast.Primitive{Kind: token.STRING_TYPE}
	case runtimeabi.Opaque:
		if owner == "Vec" && (method == "get" || method == "pop") {
			return ast.Primitive{Kind: token.I32} // element type, pragmatic i32 fallback
		}
		return stdTypeByName(owner)
	default:
		return ast.Poison{}
	}
}

// stdTypeByName returns the sealed EaType for one of the five stdlib type
// names, with container element/key/value types defaulted to i32 per the
// runtime's pragmatic fallback.
func stdTypeByName(name string) ast.EaType {
	i32 := ast.Primitive{Kind: token.I32}
	switch name {
	case "Vec":
		return ast.StdVec{Elem: i32}
	case "HashMap":
		return ast.StdHashMap{Key: i32, Value: i32}
	case "HashSet":
		return ast.StdHashSet{Elem: i32}
	case "String":
		return ast.StdString{}
	case "File":
		return ast.StdFile{}
	default:
		return ast.Poison{}
	}
}

// stdMethodSignature resolves a stdlib method call into its Eä-level
// parameter and return types, reading the single runtimeabi.Table instead
// of maintaining its own copy.
func stdMethodSignature(typeName, method string, static bool) (params []ast.EaType, ret ast.EaType, ok bool) {
	m, found := runtimeabi.Lookup(typeName, method, static)
	if !found {
		return nil, nil, false
	}
	params = make([]ast.EaType, len(m.Params))
	for i, p := range m.Params {
		params[i] = abiTypeToEa(p, typeName, method)
	}
	ret = abiTypeToEa(m.Ret, typeName, method)
	return params, ret, true
}

// stdTypeNames lists the five sealed nominal stdlib types, used for
// did-you-mean suggestions against UnknownStaticMethod errors.
var stdTypeNames = []string{"Vec", "HashMap", "HashSet", "String", "File"}

// resolveCustom promotes an ast.Custom placeholder arising from a type
// annotation to its corresponding StdXxx type: no Custom(stdlib-name)
// should survive checking. ok is false when name is not one of the
// five sealed stdlib names, meaning it refers to a user struct type,
// which the caller keeps as Custom.
func resolveCustom(c ast.Custom) (ast.EaType, bool) {
	for _, n := range stdTypeNames {
		if c.Name == n {
			return stdTypeByName(n), true
		}
	}
	return nil, false
}
