package dispatcher

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/escrow"
	"github.com/duxnet-project/duxnet/pkg/executor"
	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/model"
)

var (
	tasksSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duxnet_tasks_submitted_total",
		Help: "Number of tasks accepted for dispatch.",
	})
	tasksTerminalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duxnet_tasks_terminal_total",
		Help: "Number of tasks reaching a terminal state, by state.",
	}, []string{"state"})
)

// Dispatcher owns the task lifecycle: it validates submissions, opens the
// escrow for paid services, routes work to the compute provider and drives
// every task to exactly one terminal state, by provider report or by
// timeout.
type Dispatcher struct {
	store    localdb.LocalDB
	escrow   *escrow.Engine
	executor executor.Executor
	clock    clock.Clock

	timers    map[string]*clock.Timer
	timersMtx sync.Mutex
}

type Params struct {
	Store    localdb.LocalDB
	Escrow   *escrow.Engine
	Executor executor.Executor
	Clock    clock.Clock
}

func NewDispatcher(params Params) *Dispatcher {
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	return &Dispatcher{
		store:    params.Store,
		escrow:   params.Escrow,
		executor: params.Executor,
		clock:    params.Clock,
		timers:   map[string]*clock.Timer{},
	}
}

type SubmitRequest struct {
	ServiceID      string `json:"service_id"`
	ClientDID      string `json:"client_did"`
	Payload        []byte `json:"payload"`
	CPUCores       int    `json:"cpu_cores"`
	MemoryMB       int    `json:"memory_mb"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (r SubmitRequest) validate() error {
	var result *multierror.Error
	if r.CPUCores <= 0 {
		result = multierror.Append(result, duxerrors.NewInvalidInput("cpu_cores must be positive, got %d", r.CPUCores))
	}
	if r.MemoryMB <= 0 {
		result = multierror.Append(result, duxerrors.NewInvalidInput("memory_mb must be positive, got %d", r.MemoryMB))
	}
	if r.TimeoutSeconds <= 0 {
		result = multierror.Append(result, duxerrors.NewInvalidInput("timeout_seconds must be positive, got %d", r.TimeoutSeconds))
	}
	if strings.TrimSpace(r.ClientDID) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("client DID is required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return duxerrors.NewInvalidInput("%s", err.Error())
	}
	return nil
}

// Submit validates a task against its service, opens the escrow for paid
// services and queues the task for dispatch. The returned task is in state
// Submitted; dispatch happens asynchronously.
func (d *Dispatcher) Submit(ctx context.Context, request SubmitRequest) (model.Task, error) {
	if err := request.validate(); err != nil {
		return model.Task{}, err
	}

	service, err := d.store.GetService(ctx, request.ServiceID)
	if err != nil {
		return model.Task{}, err
	}
	if !service.Active {
		return model.Task{}, duxerrors.NewInvalidInput("service %s is deactivated", service.ID)
	}

	task := model.Task{
		ID:        uuid.NewString(),
		ServiceID: service.ID,
		ClientDID: request.ClientDID,
		Payload:   request.Payload,
		Requirements: model.TaskRequirements{
			CPUCores:       request.CPUCores,
			MemoryMB:       request.MemoryMB,
			TimeoutSeconds: request.TimeoutSeconds,
		},
		State:     model.TaskStateSubmitted,
		CreatedAt: d.clock.Now().UTC(),
	}

	// settlement-on-completion: open the escrow before the task exists so
	// a buyer who cannot cover the price never gets work scheduled
	if d.escrow != nil && service.Price.IsPositive() {
		opened, err := d.escrow.Create(ctx, escrow.CreateRequest{
			ServiceID: service.ID,
			BuyerDID:  request.ClientDID,
			SellerDID: service.ProviderDID,
			Amount:    service.Price,
			Currency:  service.Currency,
		})
		if err != nil {
			return model.Task{}, err
		}
		task.EscrowID = opened.ID
	}

	if err := d.store.AddTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	tasksSubmittedTotal.Inc()

	log.Ctx(ctx).Info().
		Str("TaskID", task.ID).
		Str("ServiceID", task.ServiceID).
		Str("EscrowID", task.EscrowID).
		Msg("task submitted")

	go d.dispatch(task)
	return task, nil
}

// SetExecutor wires the compute provider. The in-process executor needs the
// dispatcher as its report callback, so the two are connected after
// construction.
func (d *Dispatcher) SetExecutor(e executor.Executor) {
	d.executor = e
}

// Get resolves a task by id. Terminal tasks are retained for audit.
func (d *Dispatcher) Get(ctx context.Context, id string) (model.Task, error) {
	return d.store.GetTask(ctx, id)
}

func (d *Dispatcher) dispatch(task model.Task) {
	ctx := context.Background()

	err := d.store.UpdateTaskState(ctx, task.ID, model.TaskStateSubmitted, model.TaskStateAccepted, nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("TaskID", task.ID).Msg("failed to accept task")
		return
	}

	err = d.store.UpdateTaskState(ctx, task.ID, model.TaskStateAccepted, model.TaskStateRunning, func(task *model.Task) {
		task.StartedAt = d.clock.Now().UTC()
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("TaskID", task.ID).Msg("failed to start task")
		return
	}

	// the timeout timer is the only built-in cancellation mechanism: armed
	// at Running entry, it force-transitions the task if no report arrives
	d.armTimeout(task)

	if err := d.executor.Execute(ctx, task); err != nil {
		d.OnFailure(ctx, task.ID, err.Error())
	}
}

func (d *Dispatcher) armTimeout(task model.Task) {
	timeout := task.Requirements.Timeout()
	d.timersMtx.Lock()
	defer d.timersMtx.Unlock()
	d.timers[task.ID] = d.clock.AfterFunc(timeout, func() {
		ctx := context.Background()
		reason := "no provider report within " + timeout.String()
		if err := d.finalize(ctx, task.ID, model.TaskStateTimedOut, nil, reason); err != nil {
			if !duxerrors.IsAlreadySettled(err) {
				log.Ctx(ctx).Error().Err(err).Str("TaskID", task.ID).Msg("timeout transition failed")
			}
		}
	})
}

func (d *Dispatcher) disarmTimeout(taskID string) {
	d.timersMtx.Lock()
	defer d.timersMtx.Unlock()
	if timer, ok := d.timers[taskID]; ok {
		timer.Stop()
		delete(d.timers, taskID)
	}
}

// OnCompletion is the provider's success report.
func (d *Dispatcher) OnCompletion(ctx context.Context, taskID string, result []byte) {
	if err := d.finalize(ctx, taskID, model.TaskStateCompleted, result, ""); err != nil {
		if !duxerrors.IsAlreadySettled(err) {
			log.Ctx(ctx).Error().Err(err).Str("TaskID", taskID).Msg("completion report failed")
		}
	}
}

// OnFailure is the provider's failure report.
func (d *Dispatcher) OnFailure(ctx context.Context, taskID string, reason string) {
	if err := d.finalize(ctx, taskID, model.TaskStateFailed, nil, reason); err != nil {
		if !duxerrors.IsAlreadySettled(err) {
			log.Ctx(ctx).Error().Err(err).Str("TaskID", taskID).Msg("failure report failed")
		}
	}
}

// finalize moves a running task to a terminal state and settles its escrow.
// The state compare-and-swap guarantees that of a racing provider report and
// timeout, exactly one triggers settlement.
func (d *Dispatcher) finalize(ctx context.Context, taskID string, to model.TaskState, result []byte, reason string) error {
	err := d.store.UpdateTaskState(ctx, taskID, model.TaskStateRunning, to, func(task *model.Task) {
		task.Result = result
		task.Error = reason
		task.EndedAt = d.clock.Now().UTC()
	})
	if err != nil {
		if duxerrors.IsConflict(err) {
			if current, getErr := d.store.GetTask(ctx, taskID); getErr == nil && current.State.IsTerminal() {
				return duxerrors.NewAlreadySettled("task", taskID, current.State.String())
			}
		}
		return err
	}
	d.disarmTimeout(taskID)
	tasksTerminalTotal.WithLabelValues(to.String()).Inc()

	log.Ctx(ctx).Info().
		Str("TaskID", taskID).
		Str("State", to.String()).
		Msg("task reached terminal state")

	d.settle(ctx, taskID, to)
	return nil
}

func (d *Dispatcher) settle(ctx context.Context, taskID string, outcome model.TaskState) {
	if d.escrow == nil {
		return
	}
	task, err := d.store.GetTask(ctx, taskID)
	if err != nil || task.EscrowID == "" {
		return
	}

	if outcome == model.TaskStateCompleted {
		err = d.escrow.Release(ctx, task.EscrowID)
	} else {
		err = d.escrow.Refund(ctx, task.EscrowID)
	}
	// a manual release/refund may have settled the escrow first; that is
	// not an error for the dispatch path
	if err != nil && !duxerrors.IsAlreadySettled(err) {
		log.Ctx(ctx).Error().Err(err).
			Str("TaskID", taskID).
			Str("EscrowID", task.EscrowID).
			Msg("escrow settlement after task completion failed")
	}
}

var _ executor.Callback = (*Dispatcher)(nil)

// WaitForTerminal polls until a task reaches a terminal state or the context
// expires. Convenience for callers without a push channel; the API exposes
// pull-based queries only.
func (d *Dispatcher) WaitForTerminal(ctx context.Context, taskID string, interval time.Duration) (model.Task, error) {
	ticker := d.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		task, err := d.store.GetTask(ctx, taskID)
		if err != nil {
			return model.Task{}, err
		}
		if task.State.IsTerminal() {
			return task, nil
		}
		select {
		case <-ctx.Done():
			return task, ctx.Err()
		case <-ticker.C:
		}
	}
}
