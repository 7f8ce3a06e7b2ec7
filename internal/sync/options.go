package sync

import (
	"fmt"
	"strings"
)

// Direction selects which side is authoritative for a run.
type Direction string

const (
	// Pull copies remote issues into the local store.
	Pull Direction = "pull"
	// Push copies local issues to the remote tracker.
	Push Direction = "push"
	// Bidirectional runs Pull to completion, then Push.
	Bidirectional Direction = "bidirectional"
)

// ParseDirection accepts pull, push, both or bidirectional in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pull":
		return Pull, nil
	case "push":
		return Push, nil
	case "both", "bidirectional":
		return Bidirectional, nil
	default:
		return "", fmt.Errorf("unknown sync direction %q: valid directions are pull, push, both", s)
	}
}

// Options configures one sync run.
type Options struct {
	Direction      Direction
	SyncLabels     bool
	SyncComments   bool
	SyncMilestones bool
	DryRun         bool
}

// DefaultOptions returns a bidirectional run with labels and comments.
func DefaultOptions() Options {
	return Options{
		Direction:    Bidirectional,
		SyncLabels:   true,
		SyncComments: true,
	}
}
