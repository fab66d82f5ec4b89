package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"scoresheet/internal/logging"
)

// Uploader stores a local file under a relative key and returns a reference.
type Uploader interface {
	PutFile(ctx context.Context, local, rel string) (string, error)
}

// Marker records where a save was mirrored.
type Marker interface {
	MarkMirrored(ctx context.Context, id, ref string) error
}

type Server struct {
	Store  Uploader
	Ledger Marker
	Log    *zap.Logger
}

func (s *Server) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMirrorScores, s.handleMirror)
	return mux
}

func (s *Server) handleMirror(ctx context.Context, t *asynq.Task) error {
	log := logging.OrNop(s.Log)
	var p MirrorPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.Path == "" || p.Relative == "" {
		return fmt.Errorf("payload missing path: %w", asynq.SkipRetry)
	}
	log.Info("mirroring scores", zap.String("path", p.Path), zap.String("save_id", p.SaveID))

	ref, err := s.Store.PutFile(ctx, p.Path, p.Relative)
	if err != nil {
		return fmt.Errorf("upload %s: %w", p.Relative, err)
	}
	if s.Ledger != nil && p.SaveID != "" {
		if err := s.Ledger.MarkMirrored(ctx, p.SaveID, ref); err != nil {
			// the object is stored; a missing ledger row is not worth a retry
			log.Warn("could not record mirror", zap.String("save_id", p.SaveID), zap.Error(err))
		}
	}
	return nil
}

// Run serves mirror tasks from redis until the process is stopped.
func Run(addr string, s *Server) error {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{
		Concurrency: 5,
		Logger:      logging.OrNop(s.Log).Sugar(),
	})
	return srv.Run(s.mux())
}
