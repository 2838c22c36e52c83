package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func writeSource(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "index.quanta")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "let x = 2 write x + 1")
	out := filepath.Join(dir, "out")

	if _, err := execute(t, "build", path, "-o", out); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(out, "index.py"))
	if err != nil {
		t.Fatal(err)
	}
	want := "x = 2\nprint(x + 1)\n"
	if string(got) != want {
		t.Errorf("generated file mismatch.\nExpected:\n%q\nGot:\n%q", want, got)
	}
}

func TestRun(t *testing.T) {
	path := writeSource(t, t.TempDir(), "repeat 3 write \"hi\" end")

	out, err := execute(t, "run", path, "--print=false", "--gas", "100000")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "hi\nhi\nhi\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunReportsCompileErrors(t *testing.T) {
	path := writeSource(t, t.TempDir(), "let x = 5 @")

	if _, err := execute(t, "run", path, "--print=false"); err == nil {
		t.Fatal("expected an error for an invalid character")
	}
}

func TestTokens(t *testing.T) {
	path := writeSource(t, t.TempDir(), "let x = 5")

	out, err := execute(t, "tokens", path)
	if err != nil {
		t.Fatalf("tokens failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 4 {
		t.Errorf("expected 4 tokens, got %d: %q", len(lines), out)
	}
}

func TestAST(t *testing.T) {
	path := writeSource(t, t.TempDir(), "write 1")

	out, err := execute(t, "ast", path)
	if err != nil {
		t.Fatalf("ast failed: %v", err)
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("ast output is not JSON: %v", err)
	}
	if tree["type"] != "Program" {
		t.Errorf("expected a Program root, got %v", tree["type"])
	}
}

func TestMissingSource(t *testing.T) {
	if _, err := execute(t, "build", filepath.Join(t.TempDir(), "absent.quanta")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
