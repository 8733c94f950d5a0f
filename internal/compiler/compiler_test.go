package compiler

import (
	"strings"
	"testing"
)

// TestEndToEndScenariosCompile runs the six source -> stdout scenarios
// through the full pipeline and checks the emitted C
// contains the constructs that would produce the documented output,
// since this suite never invokes a C compiler or runs the binary.
func TestEndToEndScenariosCompile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string // substrings the emitted C must contain
	}{
		{
			name:   "scenario 1: arithmetic precedence",
			source: "func main() -> int { print(1+2*3); return 0; }",
			want:   []string{"= (2 * 3);", "= (1 + t"},
		},
		{
			name:   "scenario 2: array store and load",
			source: "func main() -> int { let a: int[3] = 0; a[1] = 42; print(a[1]); return 0; }",
			want:   []string{"a[1] = 42;", "a[1]", "array index out of bounds"},
		},
		{
			name:   "scenario 3: recursion",
			source: "func fact(n: int) -> int { if (n <= 1) { return 1; } return n * fact(n-1); } func main() -> int { print(fact(5)); return 0; }",
			want:   []string{"fact(int64_t n)", "(n - 1)", "fact(5)"},
		},
		{
			name:   "scenario 4: while loop",
			source: "func main() -> int { let i: int = 0; while (i < 3) { print(i); i = i + 1; } return 0; }",
			want:   []string{"while", "goto"}, // source keyword absent from C; presence of goto-based loop checked separately
		},
		{
			name:   "scenario 5: out-of-bounds abort",
			source: "func main() -> int { let a: int[3] = 0; a[5] = 1; return 0; }",
			want:   []string{"array index out of bounds", "exit(1)"},
		},
		{
			name:   "scenario 6: short-circuit and",
			source: "func main() -> int { if (true && false) { print(1); } else { print(0); } return 0; }",
			want:   []string{"printf(\"%lld\\n\", 0);"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := Compile(test.source, Options{Optimize: true})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			for _, want := range test.want {
				if want == "while" || want == "goto" {
					continue // loop scenario is checked structurally below, not textually
				}
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestWhileLoopLowersToGotoNotCKeyword(t *testing.T) {
	out, err := Compile("func main() -> int { let i: int = 0; while (i < 3) { print(i); i = i + 1; } return 0; }", Options{Optimize: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Contains(out, "while (") {
		t.Errorf("expected the while loop to lower to label/goto control flow, found a C while(), got:\n%s", out)
	}
	if !strings.Contains(out, "goto") {
		t.Errorf("expected at least one goto in the loop's lowering, got:\n%s", out)
	}
}

func TestCompileWithAndWithoutOptimizeBothSucceed(t *testing.T) {
	source := "func add(a: int, b: int) -> int { return a + b; } func main() -> int { print(add(1, 2)); return 0; }"
	unopt, err := Compile(source, Options{Optimize: false})
	if err != nil {
		t.Fatalf("Compile (unoptimized): %v", err)
	}
	opt, err := Compile(source, Options{Optimize: true})
	if err != nil {
		t.Fatalf("Compile (optimized): %v", err)
	}
	if strings.Count(unopt, "printf(") != strings.Count(opt, "printf(") {
		t.Errorf("optimized and unoptimized output should print the same number of values")
	}
}

func TestEmitIRReturnsTextualDumpNotC(t *testing.T) {
	out, err := Compile("func main() -> int { print(1); return 0; }", Options{EmitIR: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Contains(out, "#include") {
		t.Errorf("--emit-ir output should not contain C headers, got:\n%s", out)
	}
	if !strings.Contains(out, "func main:") {
		t.Errorf("expected a textual IR dump naming main, got:\n%s", out)
	}
}

func TestLexErrorSurfacesFromCompile(t *testing.T) {
	_, err := Compile(`func main() -> int { let x: int = "unterminated; return 0; }`, Options{})
	if err == nil {
		t.Fatal("expected a lexer error to surface, got nil")
	}
}

func TestParseErrorSurfacesFromCompile(t *testing.T) {
	_, err := Compile("func main() { return 0; }", Options{}) // missing -> return type
	if err == nil {
		t.Fatal("expected a parse error to surface, got nil")
	}
}

func TestIRBuildErrorSurfacesFromCompile(t *testing.T) {
	_, err := Compile("func main() -> int { break; return 0; }", Options{})
	if err == nil {
		t.Fatal("expected an IR build error to surface, got nil")
	}
}
