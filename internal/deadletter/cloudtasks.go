package deadletter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
)

// deadLetterPayload is the body posted to the admin dead-letter endpoint.
type deadLetterPayload struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}

// CloudTasks dead-letters jobs via a Google Cloud Tasks queue: each Send
// enqueues one HTTP task against the admin server's dead-letter endpoint,
// giving retries, rate limiting, and durability for free.
type CloudTasks struct {
	client      *cloudtasks.Client
	queuePath   string
	endpointURL string
	log         *slog.Logger
}

// NewCloudTasks dials Cloud Tasks. endpointURL is the admin HTTP endpoint
// that records dead-lettered jobs (see internal/adminhttp).
func NewCloudTasks(ctx context.Context, projectID, locationID, queueID, endpointURL string) (*CloudTasks, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("deadletter: cloudtasks client: %w", err)
	}
	queuePath := fmt.Sprintf("projects/%s/locations/%s/queues/%s", projectID, locationID, queueID)
	return &CloudTasks{
		client:      client,
		queuePath:   queuePath,
		endpointURL: endpointURL,
		log:         slog.With("component", "deadletter"),
	}, nil
}

func (c *CloudTasks) Send(ctx context.Context, jobID, reason string) error {
	body, err := json.Marshal(deadLetterPayload{JobID: jobID, Reason: reason})
	if err != nil {
		return fmt.Errorf("deadletter: encode payload: %w", err)
	}

	req := &taskspb.CreateTaskRequest{
		Parent: c.queuePath,
		Task: &taskspb.Task{
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_POST,
					Url:        c.endpointURL,
					Headers:    map[string]string{"Content-Type": "application/json"},
					Body:       body,
				},
			},
		},
	}

	createCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	task, err := c.client.CreateTask(createCtx, req)
	if err != nil {
		return fmt.Errorf("deadletter: enqueue %s: %w", jobID, err)
	}
	c.log.Info("job dead-lettered", "job_id", jobID, "reason", reason, "task", task.GetName())
	return nil
}

func (c *CloudTasks) Close() error {
	return c.client.Close()
}
