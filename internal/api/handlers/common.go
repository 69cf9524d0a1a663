package handlers

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"github.com/adrianstroescu/saasrevive/internal/tasks"
)

// IAsynqClient defines the interface for the Asynq client methods used by the handlers.
// This allows easier mocking than using the concrete asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// enqueueEmail queues a notification email as a fire-and-forget task.
// Enqueue failures are logged and never fail the surrounding request.
func enqueueEmail(ctx context.Context, client IAsynqClient, to, subject, body string) {
	if client == nil || to == "" {
		return
	}
	task, err := tasks.NewEmailDeliveryTask(to, subject, body)
	if err != nil {
		log.Printf("ERROR building email task for %s: %v", to, err)
		return
	}
	if _, err := client.EnqueueContext(ctx, task); err != nil {
		log.Printf("ERROR enqueueing email task for %s: %v", to, err)
	}
}
