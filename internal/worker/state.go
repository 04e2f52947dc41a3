// Package worker implements the ingest pipeline's async fan-out (C11):
// dequeue → unpack → hash → upload → index.
package worker

// State names the steps of the per-job state machine (§4.5). They exist
// for logging/observability; the pipeline itself runs them as one
// sequential function, not an explicit FSM object.
type State string

const (
	StateDequeued        State = "DEQUEUED"
	StateLocalZipReady   State = "LOCAL_ZIP_READY"
	StateUnpacked        State = "UNPACKED"
	StateTreeBuilt       State = "TREE_BUILT"
	StateTreePersisted   State = "TREE_PERSISTED"
	StateMembersUploaded State = "MEMBERS_UPLOADED"
	StateIndexed         State = "INDEXED"
	StateDone            State = "DONE"
)
