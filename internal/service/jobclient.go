package service

import (
	"time"

	"aircarer/internal/jobs"

	"github.com/hibiken/asynq"
)

// JobClient interface for scheduling background jobs
type JobClient interface {
	ScheduleQueueReminder(requestID string, delay time.Duration) error
}

// AsynqJobClient implements JobClient using asynq
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) ScheduleQueueReminder(requestID string, delay time.Duration) error {
	return jobs.ScheduleQueueReminder(c.client, requestID, delay)
}
