package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeMirrorScores copies a saved score file to object storage.
const TypeMirrorScores = "mirror_scores"

// MirrorPayload names the save to mirror. Path is the local file, Relative
// its location under the save directory, which becomes the object key.
type MirrorPayload struct {
	SaveID   string `json:"save_id,omitempty"`
	Path     string `json:"path"`
	Relative string `json:"relative"`
}

func NewMirrorTask(p MirrorPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMirrorScores, b), nil
}

// Queue enqueues mirror tasks for the API process.
type Queue struct {
	Asynq *asynq.Client
}

func NewQueue(redisAddr string) *Queue {
	return &Queue{Asynq: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (q *Queue) EnqueueMirror(ctx context.Context, p MirrorPayload) error {
	task, err := NewMirrorTask(p)
	if err != nil {
		return err
	}
	// the file is rewritten on every save, so only the latest copy matters
	if _, err := q.Asynq.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeMirrorScores, err)
	}
	return nil
}

func (q *Queue) Close() error {
	return q.Asynq.Close()
}
