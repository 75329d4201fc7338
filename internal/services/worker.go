package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"elevateu/hr-coach/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(sessionID uuid.UUID)
}

type worker struct {
	sessionRepo  repositories.PracticeSessionRepository
	analyzer     AnswerAnalyzer
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(
	sessionRepo repositories.PracticeSessionRepository,
	analyzer AnswerAnalyzer,
	concurrency int,
) Worker {
	return newWorker(sessionRepo, analyzer, concurrency, 10*time.Second)
}

func newWorker(
	sessionRepo repositories.PracticeSessionRepository,
	analyzer AnswerAnalyzer,
	concurrency int,
	pollInterval time.Duration,
) *worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		sessionRepo:  sessionRepo,
		analyzer:     analyzer,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		inFlight:     make(map[uuid.UUID]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. A session that is already queued or running
// is not enqueued twice.
func (w *worker) EnqueueJob(sessionID uuid.UUID) {
	if !w.claim(sessionID) {
		return
	}

	select {
	case w.jobQueue <- sessionID:
		log.Printf("📥 Job %s enqueued\n", sessionID)
	case <-w.stopChan:
		w.release(sessionID)
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", sessionID)
	}
}

func (w *worker) claim(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[id]; ok {
		return false
	}
	w.inFlight[id] = struct{}{}
	return true
}

func (w *worker) release(id uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, id)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d stopped: %v\n", workerID, ctx.Err())
			return
		case sessionID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s\n", workerID, sessionID)
			if err := w.analyzer.AnalyzePracticeSession(ctx, sessionID); err != nil {
				log.Printf("❌ Worker #%d failed to process job %s: %v\n", workerID, sessionID, err)
			} else {
				log.Printf("✅ Worker #%d completed job %s\n", workerID, sessionID)
			}
			w.release(sessionID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.sessionRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending jobs\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
