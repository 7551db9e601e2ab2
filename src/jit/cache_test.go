package jit

import "testing"

func TestCacheKeyDigestIsStableForIdenticalInputs(t *testing.T) {
	k := CacheKey{Source: "func main() -> i32 { return 0; }", Target: "x86_64-linux-gnu", Features: "+avx2", Optimize: true}
	if k.Digest() != k.Digest() {
		t.Fatal("Digest should be deterministic for the same key")
	}
}

func TestCacheKeyDigestDistinguishesOptimizeFlag(t *testing.T) {
	base := CacheKey{Source: "func main() -> i32 { return 0; }", Target: "x86_64-linux-gnu", Features: ""}
	opt := base
	opt.Optimize = true
	noopt := base
	noopt.Optimize = false
	if opt.Digest() == noopt.Digest() {
		t.Error("Optimize=true and Optimize=false should produce different digests")
	}
}

func TestCacheKeyDigestDistinguishesSource(t *testing.T) {
	a := CacheKey{Source: "func main() -> i32 { return 0; }", Target: "t", Features: "f"}
	b := CacheKey{Source: "func main() -> i32 { return 1; }", Target: "t", Features: "f"}
	if a.Digest() == b.Digest() {
		t.Error("different source text should produce different digests")
	}
}

func TestCacheStoreAndLoadRoundTrip(t *testing.T) {
	c, err := OpenCache()
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	key := CacheKey{Source: "roundtrip test source", Target: "t", Features: "f", Optimize: true}
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := c.Store(key, want); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	got, ok := c.Load(key)
	if !ok {
		t.Fatal("expected Load to find the just-stored entry")
	}
	if string(got) != string(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCacheLoadMissReturnsFalse(t *testing.T) {
	c, err := OpenCache()
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	key := CacheKey{Source: "never stored, distinctive marker xyzzy-42", Target: "t", Features: "f"}
	if _, ok := c.Load(key); ok {
		t.Error("expected Load to report a miss for a key that was never stored")
	}
}
