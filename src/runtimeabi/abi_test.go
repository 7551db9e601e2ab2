package runtimeabi

import "testing"

func TestLookupFindsStaticConstructor(t *testing.T) {
	m, ok := Lookup("Vec", "new", true)
	if !ok {
		t.Fatal("expected to find Vec::new")
	}
	if m.Symbol != "vec_new" {
		t.Errorf("expected symbol vec_new, got %s", m.Symbol)
	}
}

func TestLookupDistinguishesStaticFromInstance(t *testing.T) {
	if _, ok := Lookup("Vec", "new", false); ok {
		t.Error("Vec::new is a static method and should not resolve as an instance method")
	}
	if _, ok := Lookup("Vec", "push", true); ok {
		t.Error("Vec.push is an instance method and should not resolve as static")
	}
}

func TestLookupMissingMethodReturnsFalse(t *testing.T) {
	if _, ok := Lookup("Vec", "does_not_exist", false); ok {
		t.Error("expected Lookup to fail for an unknown method name")
	}
}

func TestByTypePreservesTableOrderAndFiltersType(t *testing.T) {
	methods := ByType("String")
	if len(methods) == 0 {
		t.Fatal("expected String to have runtime methods")
	}
	for _, m := range methods {
		if m.TypeName != "String" {
			t.Errorf("ByType(\"String\") returned a %s method", m.TypeName)
		}
	}
	if methods[0].Symbol != "string_new" || methods[len(methods)-1].Symbol != "string_equals" {
		t.Errorf("expected Table order string_new ... string_equals, got %s ... %s", methods[0].Symbol, methods[len(methods)-1].Symbol)
	}
}

func TestMinimalDeclsFiltersByUsageSet(t *testing.T) {
	used := map[string]bool{"vec_push": true}
	decls := MinimalDecls(used)
	if len(decls) != 1 || decls[0].Symbol != "vec_push" {
		t.Fatalf("expected exactly [vec_push], got %v", decls)
	}
}

func TestEaTypeOfKnownStdlibNames(t *testing.T) {
	if _, ok := EaTypeOf("String").(interface{ String() string }); !ok {
		t.Fatal("EaTypeOf(\"String\") should return a stringable EaType")
	}
	if EaTypeOf("NotAType") != nil {
		t.Error("EaTypeOf should return nil for an unrecognized stdlib name")
	}
}
