package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable_Define(t *testing.T) {
	table := NewSymbolTable()
	table.Define("a", "int", Static)
	table.Define("b", "int", Static)
	table.Define("c", "int", Static)
	table.Define("x", "Point", Field)
	table.Define("y", "Point", Field)

	testData := []struct {
		Name  string
		Kind  Kind
		Type  string
		Index int
	}{
		{Name: "a", Kind: Static, Type: "int", Index: 0},
		{Name: "b", Kind: Static, Type: "int", Index: 1},
		{Name: "c", Kind: Static, Type: "int", Index: 2},
		{Name: "x", Kind: Field, Type: "Point", Index: 0},
		{Name: "y", Kind: Field, Type: "Point", Index: 1},
	}
	for _, data := range testData {
		assert.Equal(t, data.Kind, table.KindOf(data.Name), data.Name)
		assert.Equal(t, data.Type, table.TypeOf(data.Name), data.Name)
		assert.Equal(t, data.Index, table.IndexOf(data.Name), data.Name)
	}
	assert.Equal(t, 3, table.VarCount(Static))
	assert.Equal(t, 2, table.VarCount(Field))
	assert.Equal(t, 0, table.VarCount(Arg))
	assert.Equal(t, 0, table.VarCount(Var))
}

func TestSymbolTable_Undefined(t *testing.T) {
	table := NewSymbolTable()
	table.Define("a", "int", Static)
	assert.Equal(t, KindNone, table.KindOf("b"))
	assert.Equal(t, "", table.TypeOf("b"))
	assert.Equal(t, -1, table.IndexOf("b"))
	assert.Nil(t, table.Define("b", "int", KindNone))
	assert.Equal(t, KindNone, table.KindOf("b"))
	assert.Equal(t, 0, table.VarCount(KindNone))
}

func TestSymbolTable_StartSubroutine(t *testing.T) {
	table := NewSymbolTable()
	table.Define("s", "int", Static)
	table.Define("f1", "int", Field)
	table.Define("f2", "int", Field)

	table.StartSubroutine()
	table.Define("a", "int", Arg)
	table.Define("b", "char", Arg)
	table.Define("l", "boolean", Var)
	assert.Equal(t, 1, table.IndexOf("b"))
	assert.Equal(t, 2, table.VarCount(Arg))

	table.StartSubroutine()
	assert.Equal(t, KindNone, table.KindOf("a"))
	assert.Equal(t, KindNone, table.KindOf("l"))
	assert.Equal(t, 0, table.VarCount(Arg))
	assert.Equal(t, 0, table.VarCount(Var))
	table.Define("c", "int", Arg)
	table.Define("m", "int", Var)
	assert.Equal(t, 0, table.IndexOf("c"))
	assert.Equal(t, 0, table.IndexOf("m"))

	// Class scope survives subroutines.
	assert.Equal(t, Field, table.KindOf("f2"))
	assert.Equal(t, 1, table.IndexOf("f2"))
	assert.Equal(t, 1, table.VarCount(Static))
	assert.Equal(t, 2, table.VarCount(Field))
}

func TestSymbolTable_Shadowing(t *testing.T) {
	table := NewSymbolTable()
	table.Define("x", "int", Field)
	table.StartSubroutine()
	table.Define("x", "Array", Var)
	assert.Equal(t, Var, table.KindOf("x"))
	assert.Equal(t, "Array", table.TypeOf("x"))
	assert.Equal(t, 0, table.IndexOf("x"))

	table.StartSubroutine()
	assert.Equal(t, Field, table.KindOf("x"))
	assert.Equal(t, "int", table.TypeOf("x"))
}

func TestSymbolTable_Redefine(t *testing.T) {
	table := NewSymbolTable()
	table.StartSubroutine()
	table.Define("x", "int", Var)
	table.Define("x", "char", Var)
	assert.Equal(t, "char", table.TypeOf("x"))
	assert.Equal(t, 1, table.IndexOf("x"))
	assert.Equal(t, 2, table.VarCount(Var))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "static", Static.String())
	assert.Equal(t, "field", Field.String())
	assert.Equal(t, "argument", Arg.String())
	assert.Equal(t, "var", Var.String())
	assert.Equal(t, "none", KindNone.String())
}
