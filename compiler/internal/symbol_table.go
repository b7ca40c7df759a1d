package internal

// Kind is the storage kind of a variable. Static and Field live in class scope,
// Arg and Var live in subroutine scope.
type Kind int

const (
	KindNone Kind = iota
	Static
	Field
	Arg
	Var
)

func (kind Kind) String() string {
	switch kind {
	case Static:
		return "static"
	case Field:
		return "field"
	case Arg:
		return "argument"
	case Var:
		return "var"
	}
	return "none"
}

func (kind Kind) isClassScope() bool {
	return kind == Static || kind == Field
}

type SymbolDesc struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

type SymbolTable struct {
	classScope      map[string]*SymbolDesc
	subroutineScope map[string]*SymbolDesc
	counts          map[Kind]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScope:      map[string]*SymbolDesc{},
		subroutineScope: map[string]*SymbolDesc{},
		counts:          map[Kind]int{},
	}
}

// StartSubroutine clears the subroutine scope and restarts argument and local numbering from 0.
func (table *SymbolTable) StartSubroutine() {
	table.subroutineScope = map[string]*SymbolDesc{}
	table.counts[Arg], table.counts[Var] = 0, 0
}

// Define adds name to the scope owned by kind with the next running index of that kind.
// A name already in that scope is overwritten.
func (table *SymbolTable) Define(name, tp string, kind Kind) *SymbolDesc {
	if kind == KindNone {
		return nil
	}
	desc := &SymbolDesc{Name: name, Type: tp, Kind: kind, Index: table.counts[kind]}
	table.counts[kind]++
	if kind.isClassScope() {
		table.classScope[name] = desc
	} else {
		table.subroutineScope[name] = desc
	}
	return desc
}

func (table *SymbolTable) VarCount(kind Kind) int {
	if kind == KindNone {
		return 0
	}
	return table.counts[kind]
}

// lookUp searches the subroutine scope first, so locals and arguments shadow fields and statics.
func (table *SymbolTable) lookUp(name string) *SymbolDesc {
	if desc, ok := table.subroutineScope[name]; ok {
		return desc
	}
	return table.classScope[name]
}

func (table *SymbolTable) KindOf(name string) Kind {
	desc := table.lookUp(name)
	if desc == nil {
		return KindNone
	}
	return desc.Kind
}

func (table *SymbolTable) TypeOf(name string) string {
	desc := table.lookUp(name)
	if desc == nil {
		return ""
	}
	return desc.Type
}

func (table *SymbolTable) IndexOf(name string) int {
	desc := table.lookUp(name)
	if desc == nil {
		return -1
	}
	return desc.Index
}
