package inmemory

import (
	"context"
	"sync"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/model"
)

// InMemoryDatastore keeps the marketplace state in maps guarded by a single
// RWMutex. Reads copy entities out under the read lock so they never block
// writers for longer than the copy.
type InMemoryDatastore struct {
	// we keep pointers to these things because we will update them partially
	services     map[string]*model.Service
	serviceOrder []string
	tasks        map[string]*model.Task
	escrows      map[string]*model.Escrow
	mtx          sync.RWMutex
}

func NewInMemoryDatastore() (*InMemoryDatastore, error) {
	res := &InMemoryDatastore{
		services: map[string]*model.Service{},
		tasks:    map[string]*model.Task{},
		escrows:  map[string]*model.Escrow{},
	}
	return res, nil
}

func (d *InMemoryDatastore) AddService(ctx context.Context, service model.Service) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if _, ok := d.services[service.ID]; ok {
		return nil
	}
	d.services[service.ID] = &service
	d.serviceOrder = append(d.serviceOrder, service.ID)
	return nil
}

func (d *InMemoryDatastore) GetService(ctx context.Context, id string) (model.Service, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	service, ok := d.services[id]
	if !ok {
		return model.Service{}, duxerrors.NewServiceNotFound(id)
	}
	return *service, nil
}

func (d *InMemoryDatastore) ListServices(ctx context.Context, query localdb.ServiceQuery) ([]model.Service, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	result := []model.Service{}
	for _, id := range d.serviceOrder {
		service := d.services[id]
		if !service.Active && !query.IncludeInactive {
			continue
		}
		result = append(result, *service)
	}
	return result, nil
}

func (d *InMemoryDatastore) UpdateService(ctx context.Context, id string, update func(service *model.Service) error) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	service, ok := d.services[id]
	if !ok {
		return duxerrors.NewServiceNotFound(id)
	}
	return update(service)
}

func (d *InMemoryDatastore) CountServices(ctx context.Context) (int, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	count := 0
	for _, service := range d.services {
		if service.Active {
			count++
		}
	}
	return count, nil
}

func (d *InMemoryDatastore) AddTask(ctx context.Context, task model.Task) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if _, ok := d.tasks[task.ID]; ok {
		return nil
	}
	d.tasks[task.ID] = &task
	return nil
}

func (d *InMemoryDatastore) GetTask(ctx context.Context, id string) (model.Task, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	task, ok := d.tasks[id]
	if !ok {
		return model.Task{}, duxerrors.NewTaskNotFound(id)
	}
	return *task, nil
}

func (d *InMemoryDatastore) UpdateTaskState(
	ctx context.Context,
	id string,
	from, to model.TaskState,
	update func(task *model.Task),
) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	task, ok := d.tasks[id]
	if !ok {
		return duxerrors.NewTaskNotFound(id)
	}
	if task.State != from || !from.CanTransitionTo(to) {
		return duxerrors.NewConflict("task", id, from.String(), to.String())
	}
	task.State = to
	if update != nil {
		update(task)
	}
	return nil
}

func (d *InMemoryDatastore) CountTasks(ctx context.Context) (int, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	return len(d.tasks), nil
}

func (d *InMemoryDatastore) AddEscrow(ctx context.Context, escrow model.Escrow) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	if _, ok := d.escrows[escrow.ID]; ok {
		return nil
	}
	d.escrows[escrow.ID] = &escrow
	return nil
}

func (d *InMemoryDatastore) GetEscrow(ctx context.Context, id string) (model.Escrow, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	escrow, ok := d.escrows[id]
	if !ok {
		return model.Escrow{}, duxerrors.NewEscrowNotFound(id)
	}
	return *escrow, nil
}

func (d *InMemoryDatastore) UpdateEscrowState(
	ctx context.Context,
	id string,
	from, to model.EscrowState,
	update func(escrow *model.Escrow),
) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	escrow, ok := d.escrows[id]
	if !ok {
		return duxerrors.NewEscrowNotFound(id)
	}
	if escrow.State != from || !from.CanTransitionTo(to) {
		return duxerrors.NewConflict("escrow", id, from.String(), to.String())
	}
	escrow.State = to
	if update != nil {
		update(escrow)
	}
	return nil
}

func (d *InMemoryDatastore) CountEscrows(ctx context.Context) (int, error) {
	d.mtx.RLock()
	defer d.mtx.RUnlock()
	return len(d.escrows), nil
}

// Static check to ensure that InMemoryDatastore implements LocalDB:
var _ localdb.LocalDB = (*InMemoryDatastore)(nil)
