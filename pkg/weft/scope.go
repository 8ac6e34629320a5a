package weft

// ErrorHandler receives a render error raised below the boundary that
// registered it. Calling rethrow passes the error (or a replacement) on to
// the next boundary up.
type ErrorHandler func(err error, rethrow func(error))

// Scope is a node in the context-value chain. Each component owns one scope
// whose parent is the scope it was connected in.
type Scope struct {
	parent   *Scope
	values   map[any]any
	handlers []ErrorHandler
}

// NewScope creates a child of parent; parent may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Get looks key up through the scope chain.
func (s *Scope) Get(key any) (any, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) set(key, value any) {
	if s.values == nil {
		s.values = make(map[any]any)
	}
	s.values[key] = value
}

func (s *Scope) addErrorHandler(h ErrorHandler) {
	s.handlers = append(s.handlers, h)
}

func (s *Scope) resetErrorHandlers() {
	s.handlers = s.handlers[:0]
}

// handleError offers err to the boundaries above s, innermost first. It
// reports whether some boundary consumed the error.
func (s *Scope) handleError(err error) bool {
	for sc := s; sc != nil; sc = sc.parent {
		for i := len(sc.handlers) - 1; i >= 0; i-- {
			var rethrown error
			sc.handlers[i](err, func(e error) {
				if e == nil {
					e = err
				}
				rethrown = e
			})
			if rethrown == nil {
				return true
			}
			err = rethrown
		}
	}
	return false
}
