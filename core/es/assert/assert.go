// Package assert expresses aggregate preconditions as named conditions that
// can be checked before any event is applied.
package assert

import (
	"fmt"
)

type CondFunc func() bool

// Cond is a named boolean precondition.
type Cond interface {
	String() string
	Eval() bool
	// Check returns a descriptive error when the condition does not hold.
	Check() error
}

type cond struct {
	name  string
	cond  CondFunc
	check func() error
}

func (c *cond) Check() error   { return c.check() }
func (c *cond) String() string { return c.name }
func (c *cond) Eval() bool     { return c.cond() }

func newCond(name string, condFn CondFunc) *cond {
	return &cond{name: name, cond: condFn, check: func() error {
		if !condFn() {
			return fmt.Errorf("assertion failed: %s", name)
		}
		return nil
	}}
}

func Not(c Cond) Cond {
	return newCond(fmt.Sprintf("not(%s)", c.String()), func() bool { return !c.Eval() })
}
func True(v bool, name string) Cond  { return newCond(name, func() bool { return v }) }
func False(v bool, name string) Cond { return newCond(name, func() bool { return !v }) }

// Truef is True with a formatted name.
func Truef(v bool, format string, args ...any) Cond {
	return True(v, fmt.Sprintf(format, args...))
}

// All holds when every condition holds. Check reports the first failure.
func All(cs ...Cond) Cond {
	all := newCond("all", func() bool {
		for _, c := range cs {
			if !c.Eval() {
				return false
			}
		}
		return true
	})
	all.check = func() error {
		for _, c := range cs {
			if err := c.Check(); err != nil {
				return err
			}
		}
		return nil
	}
	return all
}

// Each builds one condition per item and combines them with All.
func Each[T any](items []T, fn func(T) Cond) Cond {
	cs := make([]Cond, 0, len(items))
	for _, item := range items {
		cs = append(cs, fn(item))
	}
	return All(cs...)
}
