package ir

// Value is a single-assignment IR entity: either the result of an
// operation or a block argument. Every Value tracks the operand slots
// that consume it, so replacing all uses touches exactly those slots
// and nothing else.
type Value struct {
	typ   Type
	name  string // printer hint, may be empty
	def   *Operation
	owner *Block // non-nil for block arguments
	index int    // result index or block-argument position
	uses  map[*Operand]struct{}
}

func newValue(typ Type) *Value {
	return &Value{typ: typ, uses: make(map[*Operand]struct{})}
}

// Type returns the value's type.
func (v *Value) Type() Type { return v.typ }

// Name returns the printer name hint (may be empty).
func (v *Value) Name() string { return v.name }

// SetName sets the printer name hint.
func (v *Value) SetName(name string) { v.name = name }

// DefiningOp returns the operation defining this value, or nil for a
// block argument.
func (v *Value) DefiningOp() *Operation { return v.def }

// IsBlockArg reports whether the value is a block argument.
func (v *Value) IsBlockArg() bool { return v.owner != nil }

// ArgIndex returns the block-argument position (or result index).
func (v *Value) ArgIndex() int { return v.index }

// NumUses returns the number of operand slots consuming this value.
func (v *Value) NumUses() int { return len(v.uses) }

// HasUses reports whether any operand slot consumes this value.
func (v *Value) HasUses() bool { return len(v.uses) > 0 }

// Users returns the distinct operations consuming this value.
func (v *Value) Users() []*Operation {
	seen := make(map[*Operation]struct{}, len(v.uses))
	users := make([]*Operation, 0, len(v.uses))
	for u := range v.uses {
		if _, ok := seen[u.owner]; ok {
			continue
		}
		seen[u.owner] = struct{}{}
		users = append(users, u.owner)
	}
	return users
}

// ReplaceAllUses atomically repoints every consuming operand slot from
// v to repl. After the call v has zero uses. Replacing a value with
// itself is a no-op.
func (v *Value) ReplaceAllUses(repl *Value) {
	if v == repl {
		return
	}
	for u := range v.uses {
		u.value = repl
		repl.uses[u] = struct{}{}
	}
	v.uses = make(map[*Operand]struct{})
}

// Operand is one consuming slot of an operation: operation op's
// index-th operand. Slots are registered in their value's use set for
// the lifetime of the owning operation.
type Operand struct {
	owner *Operation
	index int
	value *Value
}

// Value returns the value currently held by the slot.
func (o *Operand) Value() *Value { return o.value }

// Owner returns the operation owning the slot.
func (o *Operand) Owner() *Operation { return o.owner }

// Index returns the slot's position in the owner's operand list.
func (o *Operand) Index() int { return o.index }

// drop removes the slot from its value's use set. Called on erase.
func (o *Operand) drop() {
	if o.value != nil {
		delete(o.value.uses, o)
		o.value = nil
	}
}
