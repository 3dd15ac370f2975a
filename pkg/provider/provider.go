package provider

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/arnavshah/crew-planner-api/pkg/planner"
	"go.uber.org/zap"
)

// Strategy names reported to clients
const (
	StrategyEngine = "engine"
	StrategyGenAI  = "genai"
)

// Strategy produces teams for an assignment request
type Strategy interface {
	Name() string
	Assign(ctx context.Context, req models.AssignRequest) ([]models.Team, error)
}

// EngineStrategy runs the built-in planner
type EngineStrategy struct {
	Options []planner.Option
}

// Name returns the strategy name
func (EngineStrategy) Name() string { return StrategyEngine }

// Assign runs the planner synchronously; ctx is not consulted since the planner never blocks
func (e EngineStrategy) Assign(_ context.Context, req models.AssignRequest) ([]models.Team, error) {
	return planner.New(req.BoatDefinitions, req.Inventory, e.Options...).Assign(req.Participants)
}

// Result is the outcome of an Assigner run
type Result struct {
	Teams    []models.Team
	Strategy string
	Rejected []models.BoatDefinition
}

// Assigner tries an optional primary strategy and falls back to the engine
type Assigner struct {
	Primary Strategy
	Engine  EngineStrategy
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewAssigner creates an assigner. primary may be nil to always use the engine.
func NewAssigner(primary Strategy, timeout time.Duration, logger *zap.Logger) *Assigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assigner{
		Primary: primary,
		Timeout: timeout,
		Logger:  logger,
	}
}

// Assign returns teams for the request. A primary failure of any kind is
// logged and replaced by the engine's result; only input errors from the
// engine itself are returned.
func (a *Assigner) Assign(ctx context.Context, req models.AssignRequest) (*Result, error) {
	if err := planner.Validate(req.Participants); err != nil {
		return nil, err
	}
	p := planner.New(req.BoatDefinitions, req.Inventory, a.Engine.Options...)

	if a.Primary != nil && len(req.Participants) > 0 {
		teams, err := a.tryPrimary(ctx, req)
		if err == nil {
			return &Result{Teams: teams, Strategy: a.Primary.Name(), Rejected: p.Rejected}, nil
		}
		a.Logger.Warn("primary strategy failed, falling back to engine",
			zap.String("strategy", a.Primary.Name()),
			zap.Int("participants", len(req.Participants)),
			zap.Error(err))
	}

	teams, err := p.Assign(req.Participants)
	if err != nil {
		return nil, err
	}
	return &Result{Teams: teams, Strategy: StrategyEngine, Rejected: p.Rejected}, nil
}

func (a *Assigner) tryPrimary(ctx context.Context, req models.AssignRequest) ([]models.Team, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	type outcome struct {
		teams []models.Team
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: errors.New("primary strategy panicked")}
			}
		}()
		t, e := a.Primary.Assign(ctx, req)
		done <- outcome{teams: t, err: e}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if len(out.teams) == 0 {
			return nil, ErrEmptyResponse
		}
		return out.teams, nil
	}
}
