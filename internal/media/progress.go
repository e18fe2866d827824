package media

// Status is the lifecycle state of a download. Completed and Failed are
// terminal; no progress events follow them.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Progress is emitted once per chunk and once at terminal state. The bytes
// are already placed in the sink when the event fires. BytesDownloaded is
// strictly increasing across non-failed events; a Failed event reports the
// count at which the failing chunk started.
type Progress struct {
	Status          Status
	BytesDownloaded int64
	Err             error
}

// Result mirrors the final progress event of one download invocation.
type Result struct {
	Status          Status
	BytesDownloaded int64
	Err             error
}
