// Package diag collects positioned diagnostics (lex/parse/type errors) and
// the suggestions attached to them.
//
// vslc accumulates errors with a channel-backed perror so that
// parallel codegen workers can report concurrently (util/perror.go). The
// core compiler here is single-threaded end-to-end, so Bag keeps the same
// accumulate-then-drain shape but protects it with a plain mutex instead of
// a channel and a listener goroutine.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"ea/src/token"
)

// Kind differentiates the phase and specific failure a Diagnostic reports.
type Kind int

const (
	// Lex errors.
	LexUnexpectedChar Kind = iota
	LexUnterminatedString
	LexInvalidNumber
	LexInvalidVectorSuffix

	// Parse errors.
	ParseUnexpectedToken
	ParseMissingToken
	ParseMalformedDecl
	ParseVectorLaneMismatch
	ParseInvalidAlignment

	// Type errors.
	TypeUndefinedName
	TypeSignatureMismatch
	TypeSignMismatch
	TypeVectorElementMismatch
	TypeNonIntegerBitwiseVector
	TypeMissingReturn
	TypeUnknownMethod
	TypeUnknownStaticMethod
	TypeWrongArity
	TypeImmutableAssignment

	// Codegen errors.
	CodeGenInternal
	CodeGenUnsupportedTargetFeature
	CodeGenUnresolvedSymbolAtLink

	// JIT errors.
	JitUnresolvedSymbol
	JitEngineFailure
	JitTimeout
	JitExecutionTrap
)

var kindNames = map[Kind]string{
	LexUnexpectedChar:      "unexpected character",
	LexUnterminatedString:  "unterminated string literal",
	LexInvalidNumber:       "invalid numeric literal",
	LexInvalidVectorSuffix: "invalid vector type suffix",

	ParseUnexpectedToken:    "unexpected token",
	ParseMissingToken:       "missing token",
	ParseMalformedDecl:      "malformed declaration",
	ParseVectorLaneMismatch: "vector literal lane count mismatch",
	ParseInvalidAlignment:   "invalid alignment",

	TypeUndefinedName:           "undefined name",
	TypeSignatureMismatch:       "signature mismatch",
	TypeSignMismatch:            "sign mismatch",
	TypeVectorElementMismatch:   "vector element mismatch",
	TypeNonIntegerBitwiseVector: "non-integer bitwise vector operand",
	TypeMissingReturn:           "missing return",
	TypeUnknownMethod:           "unknown method",
	TypeUnknownStaticMethod:     "unknown static method",
	TypeWrongArity:              "wrong arity",
	TypeImmutableAssignment:     "assignment to immutable binding",

	CodeGenInternal:                 "internal code generation error",
	CodeGenUnsupportedTargetFeature: "unsupported target feature",
	CodeGenUnresolvedSymbolAtLink:   "unresolved symbol at link",

	JitUnresolvedSymbol: "unresolved symbol",
	JitEngineFailure:    "JIT engine failure",
	JitTimeout:          "JIT execution timeout",
	JitExecutionTrap:    "JIT execution trap",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SuggestionKind is the closed set of recovery/suggestion actions a
// Diagnostic may attach. Suggestions never auto-apply.
type SuggestionKind int

const (
	SuggestDidYouMean SuggestionKind = iota
	SuggestInsertToken
	SuggestReplaceToken
	SuggestAddReturnType
	SuggestUseDottedOperator
	SuggestImportMissingStdlibType
)

// Suggestion is a single recovery hint attached to a Diagnostic.
type Suggestion struct {
	Kind SuggestionKind
	Text string
}

// Diagnostic is a single positioned compiler error or note.
type Diagnostic struct {
	Kind           Kind
	Message        string
	PrimarySpan    token.Span
	SecondarySpans []token.Span
	Suggestions    []Suggestion
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%d:%d: %s: %s", d.PrimarySpan.Line, d.PrimarySpan.Col, d.Kind, d.Message)
	for _, sg := range d.Suggestions {
		s += fmt.Sprintf("\n  suggestion: %s", sg.Text)
	}
	return s
}

// Bag is a mutex-protected diagnostic collector. Every phase appends to the
// same Bag; nothing is thrown away on the first error so later phases can
// still report.
type Bag struct {
	mu   sync.Mutex
	diag []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag { return &Bag{} }

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diag = append(b.diag, d)
}

// Errorf appends a diagnostic built from a format string, with no
// secondary spans or suggestions.
func (b *Bag) Errorf(kind Kind, span token.Span, format string, args ...interface{}) {
	b.Add(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), PrimarySpan: span})
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.diag) > 0
}

// Len returns the number of recorded diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.diag)
}

// Diagnostics returns the accumulated diagnostics grouped by phase (lex,
// parse, type, codegen, JIT), ordered by primary span within each phase,
// and with identical messages at the same primary span collapsed to one.
func (b *Bag) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diag))
	copy(out, b.diag)
	// Kinds are declared phase by phase; each entry is a phase's first kind.
	phaseStarts := []Kind{ParseUnexpectedToken, TypeUndefinedName, CodeGenInternal, JitUnresolvedSymbol}
	phase := func(k Kind) int {
		p := 0
		for p < len(phaseStarts) && k >= phaseStarts[p] {
			p++
		}
		return p
	}
	sort.SliceStable(out, func(i, j int) bool {
		if pi, pj := phase(out[i].Kind), phase(out[j].Kind); pi != pj {
			return pi < pj
		}
		si, sj := out[i].PrimarySpan, out[j].PrimarySpan
		if si.Line != sj.Line {
			return si.Line < sj.Line
		}
		return si.Col < sj.Col
	})
	seen := make(map[string]bool, len(out))
	deduped := out[:0]
	for _, d := range out {
		key := fmt.Sprintf("%d:%d:%s", d.PrimarySpan.Line, d.PrimarySpan.Col, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, d)
	}
	return deduped
}
