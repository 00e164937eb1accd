package command

// Property sets a value through a setter, remembering the previous value for
// undo.
type Property[T any] struct {
	Base
	set      func(T)
	newValue T
	oldValue T
}

// NewProperty creates a historable command that calls set(newValue) on Do and
// set(oldValue) on Undo.
func NewProperty[T any](description string, set func(T), newValue, oldValue T) *Property[T] {
	return &Property[T]{Base: NewBase(description, true), set: set, newValue: newValue, oldValue: oldValue}
}

func (p *Property[T]) Prepare() error {
	if p.set == nil {
		return Preconditionf("%s: no setter", p.Description())
	}
	return nil
}

func (p *Property[T]) Do() error {
	p.set(p.newValue)
	return nil
}

func (p *Property[T]) Undo() error {
	p.set(p.oldValue)
	return nil
}

func (p *Property[T]) NewValue() T { return p.newValue }
func (p *Property[T]) OldValue() T { return p.oldValue }
