package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rana718/transit-studio/internal/types"
)

// Step identifies which decision a Confirmer is asked for.
type Step int

const (
	// StepConfirmDelete is the single yes/no asked before a plain delete.
	StepConfirmDelete Step = iota
	StepConfirmPrimary
	StepConfirmTrips
	StepConfirmShapes
)

func (s Step) String() string {
	switch s {
	case StepConfirmPrimary:
		return "confirm-primary"
	case StepConfirmTrips:
		return "confirm-trips"
	case StepConfirmShapes:
		return "confirm-shapes"
	default:
		return "confirm-delete"
	}
}

type Prompt struct {
	Step     Step
	Table    string
	TargetID string
	Message  string
}

// Confirmer asks the user for a decision. Implementations may block or wait
// on another goroutine; a cancelled ctx must end the wait with an error.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type ConfirmerFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

type CascadeDeleter interface {
	CascadeDelete(ctx context.Context, id string, opts types.CascadeOptions) (*types.CascadeResult, error)
}

// CascadeDeletePlan holds the user's decisions for one target. It can be
// executed once.
type CascadeDeletePlan struct {
	TargetID     string
	DeleteTrips  bool
	DeleteShapes bool

	mu       sync.Mutex
	consumed bool
}

func (p *CascadeDeletePlan) Options() types.CascadeOptions {
	return types.CascadeOptions{DeleteTrips: p.DeleteTrips, DeleteShapes: p.DeleteShapes}
}

func (p *CascadeDeletePlan) consume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.consumed {
		return false
	}
	p.consumed = true
	return true
}

// CascadeDeleteCoordinator walks confirm-primary, confirm-trips and
// confirm-shapes, then sends both decisions in a single request.
type CascadeDeleteCoordinator struct {
	table     string
	confirmer Confirmer
	deleter   CascadeDeleter
}

func NewCascadeDeleteCoordinator(table string, confirmer Confirmer, deleter CascadeDeleter) *CascadeDeleteCoordinator {
	return &CascadeDeleteCoordinator{table: table, confirmer: confirmer, deleter: deleter}
}

// Plan collects the three decisions. Declining the first returns ErrDeclined
// and no plan.
func (c *CascadeDeleteCoordinator) Plan(ctx context.Context, targetID string) (*CascadeDeletePlan, error) {
	ok, err := c.ask(ctx, StepConfirmPrimary, targetID,
		fmt.Sprintf("Delete %s %s?", c.table, targetID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDeclined
	}

	plan := &CascadeDeletePlan{TargetID: targetID}

	plan.DeleteTrips, err = c.ask(ctx, StepConfirmTrips, targetID,
		"Also delete its trips and their stop times?")
	if err != nil {
		return nil, err
	}

	plan.DeleteShapes, err = c.ask(ctx, StepConfirmShapes, targetID,
		"Also delete the shapes used only by it?")
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Execute sends the plan's single bulk-delete request.
func (c *CascadeDeleteCoordinator) Execute(ctx context.Context, plan *CascadeDeletePlan) (*types.CascadeResult, error) {
	if !plan.consume() {
		return nil, ErrPlanConsumed
	}
	result, err := c.deleter.CascadeDelete(ctx, plan.TargetID, plan.Options())
	if err != nil {
		return nil, &CascadeDeleteError{TargetID: plan.TargetID, Err: err}
	}
	return result, nil
}

func (c *CascadeDeleteCoordinator) Run(ctx context.Context, targetID string) (*types.CascadeResult, error) {
	plan, err := c.Plan(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, plan)
}

func (c *CascadeDeleteCoordinator) ask(ctx context.Context, step Step, targetID, msg string) (bool, error) {
	return c.confirmer.Confirm(ctx, Prompt{Step: step, Table: c.table, TargetID: targetID, Message: msg})
}
