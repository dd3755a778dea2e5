// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap loads the settings subsystem chain exactly once per
// process and hands the resulting manager to every subscriber.
//
// An Orchestrator runs its steps strictly in order, publishes the manager
// produced by the final step, then waits for the header element to be
// registered before it declares itself ready. Subscribers that arrive
// earlier are queued and flushed in arrival order.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jllopis/surveyshell/pkg/contract"
	"github.com/jllopis/surveyshell/pkg/errors"
	"github.com/jllopis/surveyshell/pkg/readiness"
	"github.com/jllopis/surveyshell/pkg/settings"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// DefaultSettleTimeout bounds the wait for the element registration.
const DefaultSettleTimeout = 2 * time.Second

// Step is one link of the chain. Intermediate steps set Load; the final
// step sets Produce and returns the settings manager.
type Step struct {
	Name    string
	Load    func(ctx context.Context) error
	Produce func(ctx context.Context) (*settings.Manager, error)
}

// Registrations reports element definitions made as a side effect of
// loading the chain.
type Registrations interface {
	IsDefined(name string) bool
	WhenDefined(name string) <-chan struct{}
}

// Options configures an Orchestrator.
type Options struct {
	Steps         []Step
	Registrations Registrations
	// Element is the registration that must be observed after loading.
	// Defaults to contract.HeaderElement.
	Element string
	// SettleTimeout bounds the registration wait. Defaults to DefaultSettleTimeout.
	SettleTimeout time.Duration
	// Slot receives the manager. Defaults to GlobalSlot.
	Slot    *Slot
	Logger  *slog.Logger
	Metrics *telemetry.ShellMetrics
	Tracer  trace.Tracer
}

// Orchestrator is the single-flight, run-once initializer of the chain.
type Orchestrator struct {
	opts  Options
	group singleflight.Group
	queue *readiness.Queue[*settings.Manager]

	mu          sync.Mutex
	loaded      []bool
	manager     *settings.Manager
	initialized bool
	inFlight    bool
}

// New validates opts and returns an idle orchestrator. The step names must
// match the canonical resource list in order.
func New(opts Options) (*Orchestrator, error) {
	if opts.Registrations == nil {
		return nil, errors.New(errors.CodeInvalidInput, "registrations are required", nil)
	}
	if len(opts.Steps) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "at least one step is required", nil)
	}
	names := make([]string, len(opts.Steps))
	last := len(opts.Steps) - 1
	for i, step := range opts.Steps {
		names[i] = step.Name
		switch {
		case i == last && (step.Produce == nil || step.Load != nil):
			return nil, errors.New(errors.CodeInvalidInput, "final step must only set Produce", nil).
				WithContext("step", step.Name)
		case i < last && (step.Load == nil || step.Produce != nil):
			return nil, errors.New(errors.CodeInvalidInput, "intermediate step must only set Load", nil).
				WithContext("step", step.Name)
		}
	}
	if err := contract.Verify(names); err != nil {
		return nil, err
	}

	if opts.Element == "" {
		opts.Element = contract.HeaderElement
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = DefaultSettleTimeout
	}
	if opts.Slot == nil {
		opts.Slot = GlobalSlot
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("surveyshell/bootstrap")
	}
	opts.Steps = append([]Step(nil), opts.Steps...)

	return &Orchestrator{
		opts:   opts,
		queue:  readiness.NewQueue[*settings.Manager](opts.Logger),
		loaded: make([]bool, len(opts.Steps)),
	}, nil
}

// Initialize runs the chain if it has not completed yet and returns the
// manager. Concurrent callers share one attempt, and so share the context
// of the caller that started it. After a success every call returns at once.
// A failed attempt leaves queued subscribers in place; a later call resumes
// from the first step that has not loaded.
func (o *Orchestrator) Initialize(ctx context.Context) (*settings.Manager, error) {
	if m, ok := o.ready(); ok {
		return m, nil
	}
	v, err, _ := o.group.Do("initialize", func() (any, error) {
		return o.attempt(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*settings.Manager), nil
}

// OnReady calls cb with the manager. When the orchestrator is ready cb runs
// synchronously. Otherwise cb is queued and, if no attempt is running, one
// is started in the background; its error is logged, never passed to cb.
func (o *Orchestrator) OnReady(cb func(*settings.Manager)) {
	if cb == nil {
		return
	}
	o.mu.Lock()
	if o.initialized && o.manager != nil {
		m := o.manager
		o.mu.Unlock()
		cb(m)
		return
	}
	o.queue.Enqueue(cb)
	start := !o.inFlight
	if start {
		o.inFlight = true
	}
	o.mu.Unlock()

	if start {
		go func() {
			if _, err := o.Initialize(context.Background()); err != nil {
				o.opts.Logger.Error("bootstrap.background.failed", slog.String("error", err.Error()))
			}
		}()
	}
}

// IsReady reports whether initialization completed and a manager exists.
func (o *Orchestrator) IsReady() bool {
	_, ok := o.ready()
	return ok
}

// Pending returns the number of subscribers waiting for readiness.
func (o *Orchestrator) Pending() int {
	return o.queue.Len()
}

func (o *Orchestrator) ready() (*settings.Manager, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.manager, o.initialized && o.manager != nil
}

func (o *Orchestrator) attempt(ctx context.Context) (*settings.Manager, error) {
	o.mu.Lock()
	if o.initialized && o.manager != nil {
		m := o.manager
		o.mu.Unlock()
		return m, nil
	}
	o.inFlight = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	attemptID := uuid.NewString()
	log := o.opts.Logger.With(slog.String("attempt_id", attemptID))
	ctx, span := o.opts.Tracer.Start(ctx, "Bootstrap.Initialize", trace.WithAttributes(
		telemetry.BootstrapAttributes(attemptID, o.opts.Element, len(o.opts.Steps))...,
	))
	defer span.End()

	log.InfoContext(ctx, "bootstrap.attempt.start", slog.Int("steps", len(o.opts.Steps)))

	manager, err := o.runSteps(ctx, log)
	if err == nil {
		err = o.awaitRegistration(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.opts.Metrics.RecordBootstrapAttempt(ctx, false)
		o.opts.Metrics.RecordBootstrapFailure(ctx, err)
		log.ErrorContext(ctx, "bootstrap.attempt.failed",
			slog.String("error", err.Error()),
			slog.Int("pending", o.queue.Len()),
		)
		return nil, err
	}

	o.mu.Lock()
	o.initialized = true
	o.mu.Unlock()
	o.opts.Metrics.RecordBootstrapAttempt(ctx, true)

	pending := o.queue.Len()
	failed := o.queue.Flush(manager)
	o.opts.Metrics.RecordCallbackFailures(ctx, failed)
	log.InfoContext(ctx, "bootstrap.attempt.complete",
		slog.String("manager_id", manager.ID()),
		slog.Int("flushed", pending),
		slog.Int("failed_callbacks", failed),
	)
	return manager, nil
}

func (o *Orchestrator) runSteps(ctx context.Context, log *slog.Logger) (*settings.Manager, error) {
	last := len(o.opts.Steps) - 1
	for i, step := range o.opts.Steps {
		o.mu.Lock()
		done := o.loaded[i]
		o.mu.Unlock()

		stepCtx, span := o.opts.Tracer.Start(ctx, "Bootstrap.Step", trace.WithAttributes(
			telemetry.StepAttributes(step.Name, i, done)...,
		))
		if done {
			log.DebugContext(stepCtx, "bootstrap.step.skip", slog.String("step", step.Name))
			span.End()
			continue
		}

		log.DebugContext(stepCtx, "bootstrap.step.start", slog.String("step", step.Name))
		err := o.runStep(stepCtx, i == last, step)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return nil, errors.New(errors.CodeLoadFailure, "failed to load step", err).
				WithContext("step", step.Name).
				WithContext("index", i).
				WithRecoverable(true)
		}
		span.End()

		o.mu.Lock()
		o.loaded[i] = true
		o.mu.Unlock()
		log.DebugContext(stepCtx, "bootstrap.step.complete", slog.String("step", step.Name))
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.manager == nil {
		return nil, errors.New(errors.CodeLoadFailure, "settings manager missing after load", nil)
	}
	return o.manager, nil
}

// runStep runs one action. A panicking action fails the step like a
// returned error so the attempt, not the process, absorbs it.
func (o *Orchestrator) runStep(ctx context.Context, final bool, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeLoadFailure, "step panicked", fmt.Errorf("%v", r)).
				WithContext("step", step.Name)
		}
	}()
	if !final {
		return step.Load(ctx)
	}
	m, err := step.Produce(ctx)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("step %s produced no settings manager", step.Name)
	}
	o.opts.Slot.Publish(m)

	o.mu.Lock()
	o.manager = o.opts.Slot.Get()
	o.mu.Unlock()
	return nil
}

func (o *Orchestrator) awaitRegistration(ctx context.Context) error {
	el := o.opts.Element
	if o.opts.Registrations.IsDefined(el) {
		return nil
	}
	timer := time.NewTimer(o.opts.SettleTimeout)
	defer timer.Stop()

	select {
	case <-o.opts.Registrations.WhenDefined(el):
		return nil
	case <-timer.C:
		return errors.New(errors.CodeRegistrationTimeout,
			fmt.Sprintf("%s was not registered within %s", el, o.opts.SettleTimeout), nil).
			WithContext("element", el).
			WithRecoverable(true)
	case <-ctx.Done():
		return errors.New(errors.CodeRegistrationTimeout, "registration wait cancelled", ctx.Err()).
			WithContext("element", el).
			WithRecoverable(true)
	}
}
