package ecs

import (
	"context"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Phase orders systems within a frame. Lower phases run first; systems of
// one phase run in registration order.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseUpdate
	PhaseRender
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseRender:
		return "render"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// Phased is implemented by systems that run outside PhaseUpdate.
type Phased interface {
	Phase() Phase
}

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Phase          Phase
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

// scheduled is one registered system with its running totals.
type scheduled struct {
	system System
	name   string
	phase  Phase

	runs  int64
	min   time.Duration
	max   time.Duration
	total time.Duration
	last  time.Duration
}

func (s *scheduled) record(d time.Duration) {
	s.runs++
	s.last = d
	s.total += d
	s.min = min(s.min, d)
	s.max = max(s.max, d)
}

func (s *scheduled) stats() SystemStats {
	st := SystemStats{
		Name:           s.name,
		Phase:          s.phase,
		ExecutionCount: s.runs,
		MinDuration:    s.min,
		MaxDuration:    s.max,
		LastDuration:   s.last,
		TotalDuration:  s.total,
	}
	if s.runs > 0 {
		st.AvgDuration = s.total / time.Duration(s.runs)
	}
	return st
}

// Scheduler runs systems phase by phase once per frame. Commands queued
// during a phase are applied before the next phase starts.
type Scheduler struct {
	entities *EntityManager
	systems  []*scheduled
}

// NewScheduler creates a scheduler over the given entity manager.
func NewScheduler(entities *EntityManager) *Scheduler {
	return &Scheduler{entities: entities}
}

// Register injects the system's Query and Singleton fields and files it
// under its phase.
func (s *Scheduler) Register(system System) {
	inject(system, s.entities)

	entry := &scheduled{
		system: system,
		name:   systemName(system),
		phase:  PhaseUpdate,
		min:    time.Duration(math.MaxInt64),
	}
	if p, ok := system.(Phased); ok {
		entry.phase = p.Phase()
	}

	s.systems = append(s.systems, entry)
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].phase < s.systems[j].phase
	})
}

func systemName(system System) string {
	if named, ok := system.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// inject calls Init on every exported Query[...] or Singleton[...] field of
// a struct system.
func inject(system System, entities *EntityManager) {
	v := reflect.ValueOf(system)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	em := reflect.ValueOf(entities)
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}
		name := field.Type().Name()
		if !strings.HasPrefix(name, "Query[") && !strings.HasPrefix(name, "Singleton[") {
			continue
		}
		initFn := field.Addr().MethodByName("Init")
		if !initFn.IsValid() {
			panic("ecs: no Init method on system field " + v.Type().Field(i).Name)
		}
		initFn.Call([]reflect.Value{em})
	}
}

// Once runs every system with the given delta time.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.entities)

	for i, entry := range s.systems {
		start := time.Now()
		entry.system.Execute(frame)
		entry.record(time.Since(start))

		if i == len(s.systems)-1 || s.systems[i+1].phase != entry.phase {
			frame.Commands.Flush(s.entities)
		}
	}
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns per-system statistics in execution order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}
	for i, entry := range s.systems {
		stats.Systems[i] = entry.stats()
		stats.TotalExecutions += entry.runs
	}
	return stats
}
