package weft

import (
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
)

// Root binds a value into a container element. Every operation runs as its
// own update and returns a handle to wait on.
type Root struct {
	runtime   *Runtime
	container *dom.Node
	part      *part.Part
	scope     *Scope
	value     any
	slot      Slot
	mounted   bool
}

// CreateRoot prepares value for mounting into container. Nothing is rendered
// until Mount or Hydrate.
func CreateRoot(value any, container *dom.Node, rt *Runtime) *Root {
	namespace := container.Namespace()
	if namespace == "" {
		namespace = dom.HTMLNamespace
	}
	return &Root{
		runtime:   rt,
		container: container,
		part:      part.NewChildNode(nil, namespace),
		scope:     NewScope(nil),
		value:     value,
	}
}

// Container returns the element the root renders into.
func (r *Root) Container() *dom.Node {
	return r.container
}

// Scope returns the root scope, the parent of every top-level component
// scope. Values set on it are visible to the whole tree.
func (r *Root) Scope() *Scope {
	return r.scope
}

// Provide sets a context value visible to the whole tree.
func (r *Root) Provide(key, value any) {
	r.scope.set(key, value)
}

// Mount renders the value and appends it to the container.
func (r *Root) Mount(opts ...UpdateOptions) *UpdateHandle {
	return r.schedule("Root.Mount", opts, func(session *UpdateSession) {
		anchor := dom.NewComment("")
		r.part.Node = anchor
		r.slot = session.ResolveSlot(r.value, r.part)
		r.slot.Attach(session)
		r.mounted = true
		session.EnqueueMutationEffect(EffectFunc(func() {
			r.container.AppendChild(anchor)
		}))
		session.EnqueueMutationEffect(r.slot)
	})
}

// Hydrate adopts server-rendered markup already in the container.
func (r *Root) Hydrate(opts ...UpdateOptions) *UpdateHandle {
	return r.schedule("Root.Hydrate", opts, func(session *UpdateSession) {
		tree := NewHydrationTree(r.container)
		r.slot = session.ResolveSlot(r.value, r.part)
		r.slot.Hydrate(tree, session)
		r.part.Node = tree.PopComment()
		r.mounted = true
		session.EnqueueMutationEffect(r.slot)
	})
}

// Update reconciles a new value into the mounted root.
func (r *Root) Update(value any, opts ...UpdateOptions) *UpdateHandle {
	return r.schedule("Root.Update", opts, func(session *UpdateSession) {
		if !r.mounted {
			panic(errors.New("E502").WithDetail("Update"))
		}
		r.value = value
		if r.slot.Reconcile(value, session) {
			session.EnqueueMutationEffect(r.slot)
		}
	})
}

// Unmount detaches the tree and removes its DOM from the container.
func (r *Root) Unmount(opts ...UpdateOptions) *UpdateHandle {
	return r.schedule("Root.Unmount", opts, func(session *UpdateSession) {
		if !r.mounted {
			panic(errors.New("E502").WithDetail("Unmount"))
		}
		r.mounted = false
		slot, anchor := r.slot, r.part.Node
		slot.Detach(session)
		session.EnqueueMutationEffect(EffectFunc(func() {
			slot.Rollback()
			if anchor != nil {
				anchor.Remove()
			}
		}))
	})
}

func (r *Root) schedule(name string, opts []UpdateOptions, run func(*UpdateSession)) *UpdateHandle {
	op := &rootOperation{name: name, scope: r.scope, run: run}
	return r.runtime.ScheduleUpdate(op, mergeOptions(opts))
}

// rootOperation is a one-shot coroutine running a root operation.
type rootOperation struct {
	name  string
	scope *Scope
	lanes Lanes
	run   func(*UpdateSession)
}

func (o *rootOperation) Name() string             { return o.name }
func (o *rootOperation) Scope() *Scope            { return o.scope }
func (o *rootOperation) PendingLanes() Lanes      { return o.lanes }
func (o *rootOperation) RequestLanes(lanes Lanes) { o.lanes |= lanes }

func (o *rootOperation) Resume(session *UpdateSession) {
	o.lanes = NoLanes
	o.run(session)
}
