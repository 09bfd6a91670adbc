package tasks

// TaskSchedulerInterface is what the HTTP layer and main need from the
// background scheduler.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	// EnqueueRefresh queues a refresh of every enabled feed. Unless force is
	// set, nothing is queued while the last refresh is still fresh.
	EnqueueRefresh(force bool) (bool, error)
}
