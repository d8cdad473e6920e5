// Command ecsdemo runs the battle simulation in examples/ to completion,
// printing the tick-by-tick combat log until one side has no combatants
// left.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/forgecs/ecs"
	"github.com/forgecs/ecs/ecsconfig"
	"github.com/forgecs/ecs/ecslog"
	"github.com/forgecs/ecs/examples"
	"github.com/forgecs/ecs/profiling"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := ecsconfig.Defaults()
	log, err := ecslog.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("ecsdemo: build logger: %w", err)
	}
	defer log.Sync()

	if cfg.Profiling.Enabled {
		scope := profiling.Start(profilingKind(cfg.Profiling.Kind), cfg.Profiling.Dir)
		defer scope.Stop()
	}

	world := ecs.NewWorld()
	world.SetLogger(log)
	examples.RegisterComponents(world)

	registry := ecs.NewRegistry(world, cfg.Scheduler.RefreshWorkers)
	registry.SetLogger(log)
	defer registry.Close()

	ecs.AddSystem(registry, examples.NewHPSystem(log))
	ecs.AddSystem(registry, examples.NewBattleSystem(log))
	registry.InitNewSystems()

	spawner := ecs.NewObserver(world, ecs.RunEveryFrame)
	for i := 0; i < 6; i++ {
		ecs.CreateWith(spawner, examples.NewPlayer(fmt.Sprintf("Player %d", i))...)
	}
	ecs.CreateWith(spawner, examples.NewBoss("Boss 0")...)

	ctx := context.Background()
	for {
		registry.Prepare(ctx)
		registry.Exec()

		players := ecs.SizeOf[examples.Player](world)
		bosses := ecs.SizeOf[examples.Boss](world)
		log.Infow("tick summary", "players", players, "bosses", bosses)
		if players == 0 || bosses == 0 {
			break
		}

		time.Sleep(time.Millisecond)
	}

	ecs.RemoveSystem[*examples.HPSystem](registry)
	ecs.RemoveSystem[*examples.BattleSystem](registry)

	// one more tick to apply the pending removals
	registry.Prepare(ctx)
	registry.Exec()

	return nil
}

// profilingKind maps the config's profile name to the profiling.Kind
// pkg/profile mode, defaulting to CPU for unknown or empty values.
func profilingKind(name string) profiling.Kind {
	switch name {
	case "mem_alloc":
		return profiling.KindMemAlloc
	case "mem_heap":
		return profiling.KindMemHeap
	case "goroutine":
		return profiling.KindGoroutine
	case "block":
		return profiling.KindBlock
	case "mutex":
		return profiling.KindMutex
	default:
		return profiling.KindCPU
	}
}
