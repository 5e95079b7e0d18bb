package ir

// Module is the top-level IR container: a named list of functions.
type Module struct {
	Name  string
	Funcs []*Func
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// AddFunc appends a new empty function with the given buffer
// parameters and returns it. Parameters become entry-block arguments.
func (m *Module) AddFunc(name string, params []FuncParam) *Func {
	fn := &Func{Name: name, Params: params}
	fn.body = &Region{}
	entry := fn.body.AddBlock()
	for _, p := range params {
		arg := entry.AddArg(p.Type)
		arg.SetName(p.Name)
	}
	m.Funcs = append(m.Funcs, fn)
	return fn
}

// Func returns the named function, or nil.
func (m *Module) Func(name string) *Func {
	for _, fn := range m.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Walk visits every operation in the module in program order,
// descending into nested regions pre-order. Visiting continues while
// fn returns true.
func (m *Module) Walk(fn func(*Operation) bool) {
	for _, f := range m.Funcs {
		for _, blk := range f.body.blocks {
			if !blk.Walk(fn) {
				return
			}
		}
	}
}

// FuncParam is a named function parameter (a buffer or scalar input).
type FuncParam struct {
	Name string
	Type Type
}

// Func is a function definition: named parameters plus one body region
// whose entry block arguments are the parameters.
type Func struct {
	Name   string
	Params []FuncParam
	body   *Region
}

// Body returns the function body region.
func (f *Func) Body() *Region { return f.body }

// Entry returns the body's entry block.
func (f *Func) Entry() *Block { return f.body.Front() }

// Param returns the value of the named parameter, or nil.
func (f *Func) Param(name string) *Value {
	entry := f.Entry()
	for i, p := range f.Params {
		if p.Name == name {
			return entry.Arg(i)
		}
	}
	return nil
}
