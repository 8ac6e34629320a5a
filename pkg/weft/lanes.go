package weft

import (
	"strings"

	"github.com/vango-dev/weft/pkg/scheduler"
)

// Lanes is a bitmask partitioning scheduled work into priority classes.
type Lanes uint32

const (
	NoLanes Lanes = 0

	// DefaultLane carries updates requested without a known priority.
	DefaultLane        Lanes = 1 << 0
	UserBlockingLane   Lanes = 1 << 1
	UserVisibleLane    Lanes = 1 << 2
	BackgroundLane     Lanes = 1 << 3
	ViewTransitionLane Lanes = 1 << 4

	// AllLanes matches every pending update regardless of priority.
	AllLanes Lanes = DefaultLane | UserBlockingLane | UserVisibleLane | BackgroundLane | ViewTransitionLane
)

// Has reports whether any lane of other is set in l.
func (l Lanes) Has(other Lanes) bool {
	return l&other != 0
}

// String returns the set lanes joined by "|".
func (l Lanes) String() string {
	if l == NoLanes {
		return "NoLanes"
	}
	var names []string
	for _, lane := range []struct {
		bit  Lanes
		name string
	}{
		{DefaultLane, "Default"},
		{UserBlockingLane, "UserBlocking"},
		{UserVisibleLane, "UserVisible"},
		{BackgroundLane, "Background"},
		{ViewTransitionLane, "ViewTransition"},
	} {
		if l&lane.bit != 0 {
			names = append(names, lane.name)
		}
	}
	return strings.Join(names, "|")
}

// UpdateOptions parameterize a scheduled update.
type UpdateOptions struct {
	// Priority selects the lane; zero means the host's current task priority.
	Priority scheduler.Priority

	// ViewTransition wraps the mutation and layout commit in the host's view
	// transition primitive.
	ViewTransition bool
}

// LanesFromOptions returns the lanes an update with opts is requested at.
// A zero priority falls back to current.
func LanesFromOptions(opts UpdateOptions, current scheduler.Priority) Lanes {
	priority := opts.Priority
	if priority == 0 {
		priority = current
	}
	var lanes Lanes
	switch priority {
	case scheduler.UserBlocking:
		lanes = UserBlockingLane
	case scheduler.UserVisible:
		lanes = UserVisibleLane
	case scheduler.Background:
		lanes = BackgroundLane
	default:
		lanes = DefaultLane
	}
	if opts.ViewTransition {
		lanes |= ViewTransitionLane
	}
	return lanes
}

// PriorityFromLanes returns the host priority used to schedule a flush of
// lanes: the highest priority lane present, defaulting to user-visible.
func PriorityFromLanes(lanes Lanes) scheduler.Priority {
	switch {
	case lanes&UserBlockingLane != 0:
		return scheduler.UserBlocking
	case lanes&UserVisibleLane != 0:
		return scheduler.UserVisible
	case lanes&BackgroundLane != 0:
		return scheduler.Background
	default:
		return scheduler.UserVisible
	}
}

func mergeOptions(opts []UpdateOptions) UpdateOptions {
	var merged UpdateOptions
	for _, o := range opts {
		if o.Priority != 0 {
			merged.Priority = o.Priority
		}
		merged.ViewTransition = merged.ViewTransition || o.ViewTransition
	}
	return merged
}
