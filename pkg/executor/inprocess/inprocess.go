package inprocess

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/duxnet-project/duxnet/pkg/executor"
	"github.com/duxnet-project/duxnet/pkg/model"
)

// InProcessExecutor echoes the task payload back as the result. It stands in
// for a real compute node in the devstack and in tests.
type InProcessExecutor struct {
	callback executor.Callback
}

func NewInProcessExecutor(callback executor.Callback) *InProcessExecutor {
	return &InProcessExecutor{callback: callback}
}

func (e *InProcessExecutor) Execute(ctx context.Context, task model.Task) error {
	go func() {
		log.Ctx(ctx).Debug().Str("TaskID", task.ID).Msg("in-process executor echoing payload")
		e.callback.OnCompletion(ctx, task.ID, task.Payload)
	}()
	return nil
}

var _ executor.Executor = (*InProcessExecutor)(nil)
