package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aircarer/internal/model"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeQueueReminder = "request:queue_reminder"

// RequestLookup reads a request by id
type RequestLookup interface {
	Get(id string) (model.Request, error)
}

// Publisher delivers request events
type Publisher interface {
	PublishRequest(ctx context.Context, requestID string, event map[string]interface{}) error
}

type JobServer struct {
	server   *asynq.Server
	client   *asynq.Client
	requests RequestLookup
	bus      Publisher
	log      *zap.Logger
}

func NewJobServer(redisOpt asynq.RedisClientOpt, requests RequestLookup, bus Publisher, log *zap.Logger) (*JobServer, *asynq.Client) {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 3,
				"low":     1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server:   server,
		client:   client,
		requests: requests,
		bus:      bus,
		log:      log,
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeQueueReminder, js.HandleQueueReminder)
	return js.server.Start(mux)
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// HandleQueueReminder tells list screens that a request is still waiting
// for a provider. Requests that moved on or no longer exist are skipped.
func (js *JobServer) HandleQueueReminder(ctx context.Context, t *asynq.Task) error {
	requestID := string(t.Payload())

	req, err := js.requests.Get(requestID)
	if err != nil {
		// the registry is process-local; after a restart old tasks point nowhere
		js.log.Warn("Queue reminder for unknown request", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if req.Status != model.StatusInQueue {
		return nil
	}

	if err := js.bus.PublishRequest(ctx, requestID, map[string]interface{}{
		"type":         "request.unclaimed",
		"requestId":    requestID,
		"waitingSince": req.CreatedAt,
	}); err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}

	js.log.Info("Queue reminder sent", zap.String("request_id", requestID))
	return nil
}

// ScheduleQueueReminder enqueues a reminder that fires after delay
func ScheduleQueueReminder(client *asynq.Client, requestID string, delay time.Duration) error {
	if client == nil {
		return errors.New("job client not configured")
	}
	task := asynq.NewTask(TypeQueueReminder, []byte(requestID))
	_, err := client.Enqueue(task, asynq.ProcessIn(delay), asynq.Queue("low"), asynq.MaxRetry(3))
	return err
}
