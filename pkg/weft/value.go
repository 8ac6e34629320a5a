package weft

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are the same value for the purpose of
// skipping work. Comparable values compare with ==, NaN equals NaN, slices
// and maps compare by identity, and non-nil functions never compare equal
// since distinct closures can share code.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Float32, reflect.Float64:
		x, y := va.Float(), vb.Float()
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// dependenciesChanged reports whether a hook with deps next must rerun. A nil
// dependency list always reruns.
func dependenciesChanged(prev, next []any) bool {
	if prev == nil || next == nil {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if !SameValue(prev[i], next[i]) {
			return true
		}
	}
	return false
}

// SameValues reports whether a and b hold pairwise SameValue elements.
func SameValues(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameValue(a[i], b[i]) {
			return false
		}
	}
	return true
}
