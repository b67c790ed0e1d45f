package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"urbane-subscription-api/database"
	"urbane-subscription-api/queue"
	"urbane-subscription-api/services/email"
	"urbane-subscription-api/utils"
)

// Worker drains the job queue: receipt emails after verified payments
// and expiry sweeps for abandoned orders.
type Worker struct {
	queue        *queue.Queue
	db           *database.Connection
	emailService email.EmailSender
	shutdown     chan struct{}
	isRunning    bool
}

func NewWorker(q *queue.Queue, db *database.Connection, es email.EmailSender) *Worker {
	return &Worker{
		queue:        q,
		db:           db,
		emailService: es,
		shutdown:     make(chan struct{}),
	}
}

// Start begins processing jobs and pumping the delayed queue.
func (w *Worker) Start(concurrency int) {
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		go w.processJobs(i)
	}
	go w.pumpDelayedJobs()

	log.Printf("Started %d worker goroutines", concurrency)
}

func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.isRunning = false
}

// pumpDelayedJobs periodically promotes due delayed jobs.
func (w *Worker) pumpDelayedJobs() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Error processing delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) processJobs(workerID int) {
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			cancel()

			if err != nil {
				log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

			jobErr := w.processJob(job)
			if jobErr != nil {
				log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				failErr := w.queue.FailJob(ctx, job, jobErr)
				cancel()

				if failErr != nil {
					log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, failErr)
				}

				time.Sleep(time.Second)
				continue
			}

			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			completeErr := w.queue.CompleteJob(ctx, job)
			cancel()

			if completeErr != nil {
				log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, completeErr)
			}
		}
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeSendReceipt:
		return w.processSendReceipt(job)
	case queue.JobTypeExpireOrders:
		return w.processExpireOrders(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (w *Worker) processSendReceipt(job *queue.Job) error {
	to, ok := job.Data["email"].(string)
	if !ok || to == "" {
		return fmt.Errorf("invalid email in job data")
	}
	name, _ := job.Data["name"].(string)
	planName, _ := job.Data["plan_name"].(string)

	amountPaise := 0
	if v, ok := job.Data["amount"].(float64); ok {
		amountPaise = int(v)
	}
	currency, _ := job.Data["currency"].(string)
	if currency == "" {
		currency = "INR"
	}

	log.Printf("Sending receipt to %s for plan %s", to, planName)
	return w.emailService.SendReceiptEmail(to, name, planName, utils.FormatAmount(amountPaise, currency))
}

// processExpireOrders marks still-unpaid orders past the checkout
// window as expired. The job carries the cutoff so the sweep stays
// consistent across retries.
func (w *Worker) processExpireOrders(job *queue.Job) error {
	olderThanSeconds := 1800.0
	if v, ok := job.Data["older_than_seconds"].(float64); ok && v > 0 {
		olderThanSeconds = v
	}

	_, err := w.db.ExpireStaleOrders(time.Duration(olderThanSeconds) * time.Second)
	return err
}
