package await

import (
	"fmt"
	"time"
)

// SourceKind identifies which kind of source a computation suspended on.
type SourceKind uint8

const (
	// SourceTask is a nested task awaited via AwaitTask.
	SourceTask SourceKind = iota
	// SourceCall is a single-callback external call awaited via AwaitCall.
	SourceCall
	// SourceSingle is a single-value push source awaited via AwaitSingle.
	SourceSingle
	// SourceFunc is a plain function dispatched to a worker pool via AwaitFunc.
	SourceFunc
)

func (k SourceKind) String() string {
	switch k {
	case SourceTask:
		return "task"
	case SourceCall:
		return "call"
	case SourceSingle:
		return "single"
	case SourceFunc:
		return "func"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Observer receives lifecycle notifications from a driver and its task.
// Implementations must be safe for use from multiple goroutines; resume
// notifications fire on whichever goroutine a source settles on.
type Observer interface {
	TaskStarted()
	TaskSuspended(kind SourceKind)
	TaskResumed(kind SourceKind)
	TaskCompleted(dur time.Duration)
	TaskFailed(dur time.Duration, err error)
	TaskCanceled()
	ErrorEscalated(err error)
}
