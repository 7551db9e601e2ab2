package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the CLI-driven configuration for a single compilation. The
// shape is vslc's flat-struct-plus-hand-rolled-scanner design
// (util/args.go). The command-line driver itself is an external
// collaborator — this struct is the contract it must populate.
type Options struct {
	Src string // Path to source file. Empty means read from stdin.
	Out string // Path to output .ll file. Defaults to Src with a .ll suffix.

	Run         bool // --run: compile and JIT-execute.
	EmitTokens  bool // --emit-tokens
	EmitAST     bool // --emit-ast
	EmitLLVM    bool // --emit-llvm: print IR with diagnostics.
	EmitLLVMOnly bool // --emit-llvm-only: print IR, no diagnostics.
	Verbose     bool // --verbose: phase timings.
	Quiet       bool // --quiet: suppress diagnostics.
	Test        bool // --test: run built-in smoke tests and exit.
	DiagnoseJIT bool // --diagnose-jit: JIT symbol resolution report.

	NoCache  bool // disables the content-addressed compilation cache.
	Optimize bool // runs the conservative function-pass pipeline. Default true.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "ea compiler 1.0"

// Exit codes returned by the CLI driver.
const (
	ExitOK          = 0
	ExitCompileErr  = 1
	ExitJitErr      = 2
	ExitIOErr       = 3
)

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options value.
func ParseArgs() (Options, error) {
	opt := Options{Optimize: true}
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(ExitOK)
		case "--run":
			opt.Run = true
		case "--emit-tokens":
			opt.EmitTokens = true
		case "--emit-ast":
			opt.EmitAST = true
		case "--emit-llvm":
			opt.EmitLLVM = true
		case "--emit-llvm-only":
			opt.EmitLLVMOnly = true
		case "--verbose":
			opt.Verbose = true
		case "--quiet":
			opt.Quiet = true
		case "--test":
			opt.Test = true
		case "--diagnose-jit":
			opt.DiagnoseJIT = true
		case "--no-cache":
			opt.NoCache = true
		case "--no-optimize":
			opt.Optimize = false
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			if strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("expected path to output file, got new flag %s", args[i+1])
			}
			i++
			opt.Out = args[i]
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(ExitOK)
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			positional = append(positional, args[i])
		}
	}
	if len(positional) > 1 {
		return opt, fmt.Errorf("expected a single source path, got %d", len(positional))
	}
	if len(positional) == 1 {
		opt.Src = positional[0]
	}
	if opt.Out == "" && opt.Src != "" {
		opt.Out = strings.TrimSuffix(opt.Src, ".ea") + ".ll"
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "--run\tCompile and JIT-execute; the program's main return becomes the exit code.")
	_, _ = fmt.Fprintln(w, "--emit-tokens\tPrint the token stream and exit.")
	_, _ = fmt.Fprintln(w, "--emit-ast\tPrint the parsed AST, then continue compiling.")
	_, _ = fmt.Fprintln(w, "--emit-llvm\tPrint emitted IR alongside diagnostics.")
	_, _ = fmt.Fprintln(w, "--emit-llvm-only\tPrint emitted IR only, suppressing diagnostics.")
	_, _ = fmt.Fprintln(w, "--verbose\tLog phase timings.")
	_, _ = fmt.Fprintln(w, "--quiet\tSuppress diagnostics.")
	_, _ = fmt.Fprintln(w, "--test\tRun built-in smoke tests and exit.")
	_, _ = fmt.Fprintln(w, "--diagnose-jit\tPrint a JIT symbol-resolution report.")
	_, _ = fmt.Fprintln(w, "--no-cache\tDisable the content-addressed compilation cache.")
	_, _ = fmt.Fprintln(w, "--no-optimize\tSkip the function-pass optimization pipeline.")
	_, _ = fmt.Fprintln(w, "-o\tPath to the output .ll file.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrint application version and exit.")
	_ = w.Flush()
}
