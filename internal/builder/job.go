package builder

import "context"

// Job is a run executing on its own goroutine.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Start runs req in the background. Events reach rep from the worker
// goroutine, so rep must be safe for that.
func (b *Builder) Start(ctx context.Context, req Request, rep Reporter) *Job {
	jctx, cancel := context.WithCancel(ctx)
	j := &Job{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer cancel()
		j.result = b.Run(jctx, req, rep)
	}()
	return j
}

// Cancel requests cooperative cancellation. Calling it more than once, or
// after the job finished, has no effect.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	return j.result
}
