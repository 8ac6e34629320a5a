package primitive

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// base holds the state every primitive binding shares. Embedders implement
// Commit and Rollback.
type base struct {
	typ       weft.Primitive
	part      *part.Part
	value     any
	dirty     bool
	committed bool
}

func newBase(typ weft.Primitive, value any, p *part.Part) base {
	return base{typ: typ, part: p, value: value}
}

func (b *base) Type() weft.DirectiveType { return b.typ }
func (b *base) Value() any               { return b.value }
func (b *base) Part() *part.Part         { return b.part }

func (b *base) ShouldBind(value any) bool {
	return !weft.SameValue(value, b.value)
}

func (b *base) Bind(value any) {
	b.value = value
	b.dirty = true
}

func (b *base) Hydrate(*weft.HydrationTree, *weft.UpdateSession) {
	b.dirty = true
}

func (b *base) Connect(*weft.UpdateSession) {
	b.dirty = true
}

func (b *base) Disconnect(*weft.UpdateSession) {}

// take reports whether a commit is pending and clears the flag.
func (b *base) take() bool {
	if !b.dirty {
		return false
	}
	b.dirty = false
	b.committed = true
	return true
}

// release reports whether a rollback is due and clears the flags.
func (b *base) release() bool {
	if !b.committed {
		return false
	}
	b.committed = false
	b.dirty = false
	return true
}

// isText reports whether v renders as text: nil, strings, Stringers, bools
// and numbers.
func isText(v any) bool {
	switch v.(type) {
	case nil, string, fmt.Stringer, bool:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	}
	return false
}

// ToString converts a text value to its rendered form. nil renders empty.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return fmt.Sprint(v)
}

func expectText(name string, v any) error {
	if isText(v) {
		return nil
	}
	return fmt.Errorf("%s expects a string, number or bool, got %T", name, v)
}
