package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/render"
)

type Report struct {
	// Configuration
	Duration    time.Duration
	Models      int
	PointLights int
	SpotLights  int
	Width       int
	Height      int
	Deferred    bool

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	LastFrame      render.FrameStats
	Systems        []ecs.SystemStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// FPS is the frame rate the average frame time allows.
func (s *Stats) FPS() float64 {
	if s.Avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Avg)
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Scene Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Models:** {{.Models}}
- **Point / Spot Lights:** {{.PointLights}} / {{.SpotLights}}
- **Viewport:** {{.Width}}x{{.Height}}{{if .Deferred}} (deferred){{end}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}} ({{printf "%.1f" .FrameTime.FPS}} FPS)
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Last Frame
- Visible 3D:     {{.LastFrame.Visible3D}} of {{.LastFrame.Models3D}}
- Visible 2D:     {{.LastFrame.Visible2D}} of {{.LastFrame.Models2D}}
- Shadow Passes:  {{.LastFrame.ShadowPasses}}
- Light Passes:   {{.LastFrame.LightPasses}}
- Draw Calls:     {{.LastFrame.DrawCalls}}

## Systems
{{range .Systems}}- **{{.Name}}** ({{.Phase}}): avg {{.AvgDuration}}, min {{.MinDuration}}, max {{.MaxDuration}} over {{.ExecutionCount}} runs
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
