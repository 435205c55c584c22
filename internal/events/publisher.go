/**
 * Name: events
 * Description: 업로드 진행 상태(converting -> uploading -> analyzing -> completed) 전파
 * Workflow:
 *   1. review 서비스가 단계마다 StatusUpdate 발행
 *   2. RabbitMQ topic exchange(resume.<id>) 와 사용자별 WebSocket 허브로 동시 전달
 *   3. 발행 실패는 로그만 남기고 업로드는 계속 진행
 */
package events

import (
	"context"
	"errors"
	"log/slog"

	"ResumeSense/internal/models"
)

// Publisher delivers status updates to listeners.
type Publisher interface {
	Publish(ctx context.Context, update models.StatusUpdate) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.StatusUpdate) error { return nil }

// Fanout sends every update to all publishers. One failing publisher does
// not stop the others.
type Fanout struct {
	publishers []Publisher
	logger     *slog.Logger
}

func NewFanout(logger *slog.Logger, publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, update models.StatusUpdate) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, update); err != nil {
			f.logger.Warn("failed to publish status update",
				"upload_id", update.UploadID,
				"status", update.Stage,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
