package noop

import (
	"context"

	"github.com/duxnet-project/duxnet/pkg/executor"
	"github.com/duxnet-project/duxnet/pkg/model"
)

// NoopExecutor accepts every task and never reports an outcome, leaving the
// dispatcher's timeout as the only way out. Used to test the timeout path.
type NoopExecutor struct{}

func NewNoopExecutor() *NoopExecutor {
	return &NoopExecutor{}
}

func (e *NoopExecutor) Execute(ctx context.Context, task model.Task) error {
	return nil
}

var _ executor.Executor = (*NoopExecutor)(nil)
