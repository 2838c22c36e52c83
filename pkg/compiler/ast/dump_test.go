package ast_test

import (
	"encoding/json"
	"testing"

	"github.com/agenthands/quanta/pkg/compiler/ast"
)

func TestDumpJSON(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.Declaration{Name: "x"},
		&ast.If{
			Test:       "x",
			Consequent: []ast.Statement{&ast.Print{Expression: `"yes"`}},
			Alternate:  &ast.Block{Body: []ast.Statement{&ast.Repeat{Count: "2", Body: nil}}},
		},
	}}

	b, err := json.Marshal(ast.Dump(prog))
	if err != nil {
		t.Fatal(err)
	}

	want := `{"body":[{"name":"x","type":"Declaration","value":null},` +
		`{"alternate":{"body":[{"body":[],"count":"2","type":"Repeat"}],"type":"Block"},` +
		`"consequent":[{"expression":"\"yes\"","type":"Print"}],"test":"x","type":"If"}],"type":"Program"}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}
}
