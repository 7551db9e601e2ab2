// Package runtimeabi is the single source of truth for the Eä C runtime's
// calling convention.
//
// The historical bug class this guards against is a three-way
// desynchronization between the C runtime's exported symbols, the IR
// emitter's extern declarations, and the type checker's stdlib method
// tables. The fix is structural, not procedural: encode the ABI once, as
// data, and have both downstream consumers (src/checker's method-resolution
// tables and src/codegen/llvm's declaration emission) read from this table
// instead of maintaining their own copies.
package runtimeabi

import (
	"ea/src/ast"
	"ea/src/token"
)

// ABIType is the fixed set of C types a runtime function signature is built
// from. All stdlib handles are represented as opaque i8*.
type ABIType int

const (
	Opaque ABIType = iota // i8* — an opaque runtime handle (Vec/HashMap/HashSet/String/File).
	I32
	I64
	Void
	CString // i8* used as a NUL-terminated string, distinguished from Opaque for documentation only: both lower to i8*.
)

func (t ABIType) String() string {
	switch t {
	case Opaque, CString:
		return "i8*"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case Void:
		return "void"
	default:
		return "?"
	}
}

// Method describes one runtime entry point: its C symbol, its Eä-facing
// method/static-method name, the sealed stdlib type it belongs to, and its
// signature. Both the checker's stdlib method tables and the emitter's
// extern declarations are generated by filtering and projecting this single
// slice — neither maintains its own copy of arity or types.
type Method struct {
	Symbol   string    // The exported C symbol, e.g. "vec_push".
	TypeName string    // The Eä stdlib type name this method resolves on, e.g. "Vec".
	Name     string    // The Eä-facing method name, e.g. "push".
	Static   bool      // True for TypeName::Name(...) constructors/statics; false for receiver.method(...).
	Params   []ABIType // Parameter types in the fixed C calling convention, receiver excluded.
	Ret      ABIType
}

// Table is the fixed runtime ABI. Every row here is read by
// src/checker to build its per-type method table and by src/codegen/llvm to
// emit the matching extern declaration.
var Table = []Method{
	// Vec<T>
	{Symbol: "vec_new", TypeName: "Vec", Name: "new", Static: true, Params: nil, Ret: Opaque},
	{Symbol: "vec_push", TypeName: "Vec", Name: "push", Params: []ABIType{I32}, Ret: Void},
	{Symbol: "vec_len", TypeName: "Vec", Name: "len", Ret: I32},
	{Symbol: "vec_get", TypeName: "Vec", Name: "get", Params: []ABIType{I32}, Ret: Opaque},
	{Symbol: "vec_pop", TypeName: "Vec", Name: "pop", Ret: Opaque},
	{Symbol: "vec_free", TypeName: "Vec", Name: "free", Ret: Void},

	// HashMap<K,V> (value type is nominally i32 at the runtime ABI boundary)
	{Symbol: "hashmap_new", TypeName: "HashMap", Name: "new", Static: true, Ret: Opaque},
	{Symbol: "hashmap_insert", TypeName: "HashMap", Name: "insert", Params: []ABIType{I32, I32}, Ret: Void},
	{Symbol: "hashmap_get", TypeName: "HashMap", Name: "get", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "hashmap_len", TypeName: "HashMap", Name: "len", Ret: I32},
	{Symbol: "hashmap_contains_key", TypeName: "HashMap", Name: "contains_key", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "hashmap_remove", TypeName: "HashMap", Name: "remove", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "hashmap_free", TypeName: "HashMap", Name: "free", Ret: Void},

	// HashSet<T>
	{Symbol: "HashSet_new", TypeName: "HashSet", Name: "new", Static: true, Ret: Opaque},
	{Symbol: "HashSet_insert", TypeName: "HashSet", Name: "insert", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "HashSet_contains", TypeName: "HashSet", Name: "contains", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "HashSet_remove", TypeName: "HashSet", Name: "remove", Params: []ABIType{I32}, Ret: I32},
	{Symbol: "HashSet_len", TypeName: "HashSet", Name: "len", Ret: I32},
	{Symbol: "HashSet_is_empty", TypeName: "HashSet", Name: "is_empty", Ret: I32},
	{Symbol: "HashSet_clear", TypeName: "HashSet", Name: "clear", Ret: Void},
	{Symbol: "HashSet_free", TypeName: "HashSet", Name: "free", Ret: Void},

	// String
	{Symbol: "string_new", TypeName: "String", Name: "new", Static: true, Ret: Opaque},
	{Symbol: "string_from", TypeName: "String", Name: "from", Static: true, Params: []ABIType{CString}, Ret: Opaque},
	{Symbol: "string_len", TypeName: "String", Name: "len", Ret: I32},
	{Symbol: "string_as_str", TypeName: "String", Name: "as_str", Ret: CString},
	{Symbol: "string_clone", TypeName: "String", Name: "clone", Ret: Opaque},
	{Symbol: "string_substring", TypeName: "String", Name: "substring", Params: []ABIType{I32, I32}, Ret: Opaque},
	{Symbol: "string_find", TypeName: "String", Name: "find", Params: []ABIType{CString}, Ret: I32},
	{Symbol: "string_replace", TypeName: "String", Name: "replace", Params: []ABIType{CString, CString}, Ret: Opaque},
	{Symbol: "string_to_uppercase", TypeName: "String", Name: "to_uppercase", Ret: Opaque},
	{Symbol: "string_to_lowercase", TypeName: "String", Name: "to_lowercase", Ret: Opaque},
	{Symbol: "string_trim", TypeName: "String", Name: "trim", Ret: Opaque},
	{Symbol: "string_push_str", TypeName: "String", Name: "push_str", Params: []ABIType{CString}, Ret: Void},
	{Symbol: "string_concat", TypeName: "String", Name: "concat", Params: []ABIType{Opaque}, Ret: Opaque},
	{Symbol: "string_equals", TypeName: "String", Name: "equals", Params: []ABIType{Opaque}, Ret: I32},

	// File
	{Symbol: "file_open", TypeName: "File", Name: "open", Static: true, Params: []ABIType{CString, CString}, Ret: Opaque},
	{Symbol: "file_exists", TypeName: "File", Name: "exists", Static: true, Params: []ABIType{CString}, Ret: I32},
	{Symbol: "file_size", TypeName: "File", Name: "size", Static: true, Params: []ABIType{CString}, Ret: I64},
	{Symbol: "file_delete", TypeName: "File", Name: "delete", Static: true, Params: []ABIType{CString}, Ret: Void},
	{Symbol: "file_write", TypeName: "File", Name: "write", Params: []ABIType{CString}, Ret: Void},
	{Symbol: "file_read_line", TypeName: "File", Name: "readline", Ret: CString},
	{Symbol: "file_read_all", TypeName: "File", Name: "read_all", Ret: CString},
	{Symbol: "file_close", TypeName: "File", Name: "close", Ret: Void},
}

// ByType returns every Method belonging to typeName, preserving Table
// order.
func ByType(typeName string) []Method {
	var out []Method
	for _, m := range Table {
		if m.TypeName == typeName {
			out = append(out, m)
		}
	}
	return out
}

// Lookup returns the Method for typeName.name (static or instance,
// disambiguated by the static flag) and whether it was found.
func Lookup(typeName, name string, static bool) (Method, bool) {
	for _, m := range Table {
		if m.TypeName == typeName && m.Name == name && m.Static == static {
			return m, true
		}
	}
	return Method{}, false
}

// MinimalDecls returns the subset of Table whose symbols are referenced by
// used, the set of runtime symbols the Minimal codegen mode scan found.
// Libc declarations (puts, printf, ...) are not part of Table; they
// are listed separately in src/codegen/llvm as they have no Eä-facing
// method name.
func MinimalDecls(used map[string]bool) []Method {
	var out []Method
	for _, m := range Table {
		if used[m.Symbol] {
			out = append(out, m)
		}
	}
	return out
}

// EaTypeOf maps a runtime stdlib type name to an ast.EaType, mirroring the
// types the checker's own stdTypeByName promotes ast.Custom placeholders to.
// The checker does not call it.
func EaTypeOf(typeName string) ast.EaType {
	i32 := ast.Primitive{Kind: token.I32}
	switch typeName {
	case "Vec":
		return ast.StdVec{Elem: i32} // Pragmatic fallback element type; the checker never infers another from use.
	case "HashMap":
		return ast.StdHashMap{Key: i32, Value: i32}
	case "HashSet":
		return ast.StdHashSet{Elem: i32}
	case "String":
		return ast.StdString{}
	case "File":
		return ast.StdFile{}
	default:
		return nil
	}
}
