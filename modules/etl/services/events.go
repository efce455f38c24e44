package services

// SyncCompletedEvent is published after every successful run.
type SyncCompletedEvent struct {
	Result RunResult
}
