package worker

import (
	"context"
	"log/slog"
	"sync"
)

// WorkingPool fans extraction jobs out to a fixed set of workers. One pool
// serves the whole service; documents from different batches interleave
// freely since extraction of one document never depends on another.
type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob enqueues one job; blocks when the queue is full.
func (p *WorkingPool) SubmitJob(job Job) {
	p.jobChan <- job
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done() // Tell manager we are done

	var workerWg sync.WaitGroup

	// Start all the workers
	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	// Wait for the manager to signal shutdown
	<-ctx.Done()

	slog.Info("[WorkingPool] Shutdown signaled. Closing job channel.")
	close(p.jobChan) // Tell workers no more jobs are coming

	// Wait for all workers to finish their current job and exit
	workerWg.Wait()
	slog.Info("[WorkingPool] All workers stopped.")
}

// worker is the internal goroutine for a single worker
func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()
	slog.Info("Extraction worker started", "worker_id", id)

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				slog.Info("Job channel closed, worker exiting", "worker_id", id)
				return
			}
			p.runJob(ctx, id, job)
		case <-ctx.Done():
			// Drain what is already queued before exiting
			for {
				select {
				case job, ok := <-p.jobChan:
					if !ok {
						return
					}
					p.runJob(ctx, id, job)
				default:
					return
				}
			}
		}
	}
}

func (p *WorkingPool) runJob(ctx context.Context, workerID int, job Job) {
	slog.Info("Processing extraction job",
		"worker_id", workerID,
		"job_id", job.JobID,
		"document_id", job.DocumentID,
		"product", job.Product)

	if err := job.Run(ctx); err != nil {
		slog.Error("Extraction job failed",
			"worker_id", workerID,
			"job_id", job.JobID,
			"document_id", job.DocumentID,
			"error", err)
		return
	}

	slog.Info("Extraction job completed",
		"worker_id", workerID,
		"job_id", job.JobID,
		"document_id", job.DocumentID)
}
