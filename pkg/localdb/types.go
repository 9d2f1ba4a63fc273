package localdb

import (
	"context"

	"github.com/duxnet-project/duxnet/pkg/model"
)

// ServiceQuery filters service listings. Results are always returned in
// insertion order so listings and searches are deterministic.
type ServiceQuery struct {
	IncludeInactive bool `json:"include_inactive"`
}

// A LocalDB persists services, tasks and escrows and their state. It is the
// local view of the marketplace; every state transition goes through a
// compare-and-swap so that concurrent writers referencing the same entity id
// serialize and at most one of them wins.
//
// The LocalDB interface could be swapped out for a SQL-backed implementation
// without the components above it noticing.
type LocalDB interface {
	AddService(ctx context.Context, service model.Service) error
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context, query ServiceQuery) ([]model.Service, error)
	UpdateService(ctx context.Context, id string, update func(service *model.Service) error) error
	CountServices(ctx context.Context) (int, error)

	AddTask(ctx context.Context, task model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	// UpdateTaskState atomically moves a task from one state to another,
	// applying the optional mutation while the store lock is held. It fails
	// with Conflict when the task is not in the expected state.
	UpdateTaskState(ctx context.Context, id string, from, to model.TaskState, update func(task *model.Task)) error
	CountTasks(ctx context.Context) (int, error)

	AddEscrow(ctx context.Context, escrow model.Escrow) error
	GetEscrow(ctx context.Context, id string) (model.Escrow, error)
	// UpdateEscrowState is the settlement compare-and-swap: exactly one
	// caller can move a given escrow out of a non-terminal state.
	UpdateEscrowState(ctx context.Context, id string, from, to model.EscrowState, update func(escrow *model.Escrow)) error
	CountEscrows(ctx context.Context) (int, error)
}
