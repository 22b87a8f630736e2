package physics

import (
	"runtime"
	"sync"
)

const (
	MaxPhysicsJobs     = 2048
	MaxPhysicsBarriers = 8
)

// JobSystem is a fixed pool of worker goroutines. Jobs are submitted in
// batches and Run blocks until the whole batch completes.
type JobSystem struct {
	jobs     chan func()
	wg       sync.WaitGroup
	threads  int
	maxJobs  int
	barriers chan struct{}
	once     sync.Once
}

// DefaultWorkerCount is one less than the number of hardware threads, and
// never below one.
func DefaultWorkerCount() int {
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}

func NewJobSystem(maxJobs, maxBarriers, threads int) *JobSystem {
	if threads <= 0 {
		threads = DefaultWorkerCount()
	}
	if maxBarriers <= 0 {
		maxBarriers = 1
	}
	js := &JobSystem{
		jobs:     make(chan func(), threads*4),
		threads:  threads,
		maxJobs:  maxJobs,
		barriers: make(chan struct{}, maxBarriers),
	}
	js.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go js.worker()
	}
	return js
}

func (js *JobSystem) worker() {
	defer js.wg.Done()
	for fn := range js.jobs {
		fn()
	}
}

func (js *JobSystem) Threads() int { return js.threads }

// Run executes jobs on the pool and waits for all of them. Batches larger
// than the job limit are split.
func (js *JobSystem) Run(jobs []func()) {
	js.barriers <- struct{}{}
	defer func() { <-js.barriers }()

	for len(jobs) > 0 {
		n := len(jobs)
		if js.maxJobs > 0 && n > js.maxJobs {
			n = js.maxJobs
		}
		var batch sync.WaitGroup
		batch.Add(n)
		for _, job := range jobs[:n] {
			job := job
			js.jobs <- func() {
				defer batch.Done()
				job()
			}
		}
		batch.Wait()
		jobs = jobs[n:]
	}
}

// Close stops the workers after queued jobs drain.
func (js *JobSystem) Close() {
	js.once.Do(func() {
		close(js.jobs)
		js.wg.Wait()
	})
}
