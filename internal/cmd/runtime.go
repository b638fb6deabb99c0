package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Iron-Ham/adaptui/internal/adaptation"
	"github.com/Iron-Ham/adaptui/internal/config"
	"github.com/Iron-Ham/adaptui/internal/errors"
	"github.com/Iron-Ham/adaptui/internal/event"
	"github.com/Iron-Ham/adaptui/internal/layout"
	"github.com/Iron-Ham/adaptui/internal/logging"
	"github.com/Iron-Ham/adaptui/internal/sim"
	"github.com/Iron-Ham/adaptui/internal/trigger"
	"github.com/sourcegraph/conc"
)

// globalManagerID names the single coordinator in global scope.
const globalManagerID = "global"

// runtime wires a simulated scene to its coordinators and triggers.
// Coordinators live for the whole run; triggers are replaced when the
// trigger configuration changes.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	bus      *event.Bus
	scene    *sim.Scene
	applier  *sim.PrintApplier
	managers []*adaptation.Manager
	group    *trigger.Group
	drift    conc.WaitGroup

	mu   sync.Mutex
	tcfg trigger.Config
}

func newRuntime(cfg *config.Config, out io.Writer, logger *logging.Logger) (*runtime, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}

	scene, req, err := buildScene(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		bus:     event.NewBus(logger),
		scene:   scene,
		applier: sim.NewPrintApplier(out, cfg.Simulation.Animate, logger),
		group:   trigger.NewGroup(logger),
		tcfg:    cfg.TriggerConfig(),
	}

	if err := rt.buildManagers(req); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.addTriggers(rt.tcfg); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// buildScene loads the initial layouts from the request file, or generates
// them, and places the scene's targets around them.
func buildScene(cfg *config.Config) (*sim.Scene, layout.Request, error) {
	s := cfg.Simulation

	var (
		scene *sim.Scene
		req   layout.Request
		err   error
	)
	if path := cfg.Coordinator.RequestFile; path != "" {
		req, err = layout.LoadRequest(path)
		if err != nil {
			return nil, layout.Request{}, err
		}
		scene, err = sim.FromRequest(req, s.Extent, s.Seed)
		if err != nil {
			return nil, layout.Request{}, errors.Wrapf(err, "scene from %s", path)
		}
	} else {
		scene, req = sim.Generate(cfg.Coordinator.Elements, s.Extent, s.Seed)
		req.Objectives = cfg.Coordinator.Objectives
	}

	if s.Spacing != scene.Spacing() {
		scene, err = sim.NewScene(scene.IDs(), scene.Targets(), s.Spacing)
		if err != nil {
			return nil, layout.Request{}, err
		}
	}
	return scene, req, nil
}

func (rt *runtime) newOptimizer(evaluator layout.Evaluator, i int) *sim.RandomSearch {
	s := rt.cfg.Simulation
	return sim.NewRandomSearch(evaluator, s.Seed+uint64(i)+1,
		sim.WithIterations(s.Iterations),
		sim.WithBatch(s.Batch),
		sim.WithStepSize(s.StepSize),
	)
}

// buildManagers creates one coordinator for every element in local scope,
// or a single coordinator over all of them in global scope.
func (rt *runtime) buildManagers(req layout.Request) error {
	evaluator := sim.NewEvaluator(rt.scene, rt.cfg.Simulation.EvalLatency)
	objectives := req.Objectives
	if objectives < 1 {
		objectives = rt.cfg.Coordinator.Objectives
	}

	if rt.cfg.Coordinator.Global {
		m, err := adaptation.NewManager(globalManagerID, evaluator, rt.newOptimizer(evaluator, 0), rt.applier,
			adaptation.WithElements(req.InitialLayout...),
			adaptation.WithObjectives(objectives),
			adaptation.WithLogger(rt.logger),
		)
		if err != nil {
			return errors.Wrap(err, "create global coordinator")
		}
		rt.managers = append(rt.managers, m)
		return nil
	}

	for i, l := range req.InitialLayout {
		m, err := adaptation.NewManager(l.ElementID, evaluator, rt.newOptimizer(evaluator, i), rt.applier,
			adaptation.WithLayout(l),
			adaptation.WithObjectives(objectives),
			adaptation.WithLogger(rt.logger),
		)
		if err != nil {
			return errors.Wrapf(err, "create coordinator %q", l.ElementID)
		}
		rt.managers = append(rt.managers, m)
	}
	return nil
}

// addTriggers registers one trigger per coordinator, named after it.
func (rt *runtime) addTriggers(tcfg trigger.Config) error {
	for _, m := range rt.managers {
		t, err := trigger.New(m, tcfg,
			trigger.WithID(m.ID()),
			trigger.WithBus(rt.bus),
			trigger.WithLogger(rt.logger),
		)
		if err != nil {
			return err
		}
		if err := rt.group.Add(t); err != nil {
			t.Close()
			return err
		}
	}
	return nil
}

// reconfigure replaces every trigger with one built from tcfg. It reports
// whether anything changed. Coordinators and their layouts are kept.
func (rt *runtime) reconfigure(tcfg trigger.Config) (bool, error) {
	if err := tcfg.Validate(); err != nil {
		return false, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if tcfg == rt.tcfg {
		return false, nil
	}
	for _, m := range rt.managers {
		if err := rt.group.Remove(m.ID()); err != nil && !errors.IsNotFound(err) {
			return false, err
		}
	}
	rt.tcfg = tcfg
	if err := rt.addTriggers(tcfg); err != nil {
		return false, err
	}
	rt.logger.Info("triggers reconfigured",
		"mode", tcfg.Mode(),
		"optimization_threshold", tcfg.OptimizationThreshold,
		"adaptation_threshold", tcfg.AdaptationThreshold,
	)
	return true, nil
}

// TriggerConfig returns the settings the current triggers run with.
func (rt *runtime) TriggerConfig() trigger.Config {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.tcfg
}

// Start runs every trigger and the scene drift under ctx.
func (rt *runtime) Start(ctx context.Context) {
	rt.group.Start(ctx)

	s := rt.cfg.Simulation
	if s.DriftAmplitude > 0 {
		drift := sim.NewDrift(rt.scene, s.DriftAmplitude, s.Seed)
		rt.drift.Go(func() { drift.Run(ctx, s.DriftInterval) })
	}
	rt.logger.Info("adaptation started",
		"coordinators", len(rt.managers),
		"elements", len(rt.scene.IDs()),
		"mode", rt.TriggerConfig().Mode(),
		"global", rt.cfg.Coordinator.Global,
	)
}

// Close stops every trigger and coordinator. The context passed to Start
// must be canceled first for the drift to exit.
func (rt *runtime) Close() {
	rt.group.Stop()
	rt.drift.Wait()
	for _, m := range rt.managers {
		m.Close()
	}
}

// Summary describes every trigger, one per line.
func (rt *runtime) Summary() string {
	var sb strings.Builder
	for _, s := range rt.group.Statuses() {
		fmt.Fprintln(&sb, s.String())
	}
	return sb.String()
}
