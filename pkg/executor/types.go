package executor

import (
	"context"

	"github.com/duxnet-project/duxnet/pkg/model"
)

// Callback is how a compute provider reports a task outcome back to the
// dispatcher. Reports are asynchronous; a provider that never reports is
// handled by the dispatcher's timeout.
type Callback interface {
	OnCompletion(ctx context.Context, taskID string, result []byte)
	OnFailure(ctx context.Context, taskID string, reason string)
}

// Executor is the compute-providing collaborator. Execute hands a task to
// the provider and returns once it is accepted; the outcome arrives later
// through the Callback.
type Executor interface {
	Execute(ctx context.Context, task model.Task) error
}
