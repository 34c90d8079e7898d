package publisher

import (
	"context"

	"github.com/nandanugg/linewatch/module/core/domain"
)

type NotificationPublisher interface {
	Deliver(ctx context.Context, req *domain.AlertRequest) error
}
