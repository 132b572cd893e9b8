package provisioning

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Operation names reported to observers.
const (
	OperationCreate = "create"
	OperationDelete = "delete"
)

// Observer is notified after every provisioning call.
type Observer interface {
	Observe(ctx context.Context, operation, member string, err error)
}

// LogObserver logs provisioning outcomes through the context logger.
type LogObserver struct{}

// Observe implements Observer.
func (LogObserver) Observe(ctx context.Context, operation, member string, err error) {
	logger := log.FromContext(ctx)
	if err != nil {
		logger.Error(err, "provisioning failed", "operation", operation, "member", member)
		return
	}
	logger.V(1).Info("provisioning succeeded", "operation", operation, "member", member)
}

// Observers fans out to several observers in order.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(ctx context.Context, operation, member string, err error) {
	for _, obs := range o {
		obs.Observe(ctx, operation, member, err)
	}
}
