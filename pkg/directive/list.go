package directive

import (
	"fmt"

	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

// List binds a []any at a child-node part, one child per element keyed by
// index. Use Repeat for lists whose items move.
var List weft.Primitive = listPrimitive{}

type listPrimitive struct{}

func (listPrimitive) Name() string { return "ListPrimitive" }

func (listPrimitive) EnsureValue(value any, p *part.Part) error {
	if p.Kind != part.KindChildNode {
		return fmt.Errorf("lists can only be bound as child content")
	}
	switch value.(type) {
	case nil, []any:
		return nil
	}
	return fmt.Errorf("list expects a []any, got %T", value)
}

func (t listPrimitive) ResolveBinding(value any, p *part.Part, _ weft.DirectiveContext) weft.Binding {
	return &repeatBinding{typ: t, part: p, value: value, entries: listEntries}
}

func listEntries(value any) ([]any, []any) {
	values, _ := value.([]any)
	keys := make([]any, len(values))
	for i := range keys {
		keys[i] = i
	}
	return keys, values
}
