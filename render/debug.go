package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/scene"
	"go.uber.org/zap"
)

// The synthetic slots that follow the scene's targets in the debug cycle.
const (
	slotDirectShadow = iota
	slotPointShadow
	slotSpotShadow
	shadowSlots
)

var (
	gbufferAttachments = [...]string{"diffuse", "id", "position", "normal"}
	colorAttachments   = [...]string{"color", "id"}
)

// DebugView names what the debug cycle currently inspects. Depth is set for
// shadow slots and the depth view of a scene target.
type DebugView struct {
	Label      string
	Target     string
	Attachment int
	Depth      bool
}

type debugState struct {
	// slot is -1 when cycling is off.
	slot       int
	attachment int

	frames  int
	elapsed float64
	fps     float64
}

func (d *debugState) tick(dt float64) {
	if dt <= 0 {
		return
	}
	d.frames++
	d.elapsed += dt
	if d.elapsed >= 0.5 {
		d.fps = float64(d.frames) / d.elapsed
		d.frames = 0
		d.elapsed = 0
	}
}

// FPS is the frame rate averaged over the last half second.
func (r *Renderer) FPS() float64 { return r.debug.fps }

// CycleDebugTarget steps to the next slot: each of the scene's render
// targets, then the direct, point and spot shadow maps, then off again.
func (r *Renderer) CycleDebugTarget(s *scene.Scene) (DebugView, bool) {
	if !r.debug.active() {
		r.debug.slot = 0
	} else {
		r.debug.slot++
	}
	r.debug.attachment = 0
	if r.debug.slot >= len(s.Targets())+shadowSlots {
		r.debug.slot = -1
		return DebugView{}, false
	}

	v, _ := r.DebugView(s)
	if v.Depth && !r.device.HasTarget(v.Target) {
		r.logger.Warn("debug target not rendered yet", zap.String("target", v.Target))
	}
	return v, true
}

// CycleDebugAttachment steps through the color attachments of the
// inspected scene target and then its depth.
func (r *Renderer) CycleDebugAttachment(s *scene.Scene) (DebugView, bool) {
	if !r.debug.active() {
		return DebugView{}, false
	}
	targets := s.Targets()
	if r.debug.slot < len(targets) {
		n := len(targets[r.debug.slot].Attachments)
		if targets[r.debug.slot].DepthStencil {
			n++
		}
		r.debug.attachment = (r.debug.attachment + 1) % max(n, 1)
	}
	return r.DebugView(s)
}

// DisableDebug turns cycling off.
func (r *Renderer) DisableDebug() {
	r.debug.slot = -1
	r.debug.attachment = 0
}

func (d *debugState) active() bool { return d.slot >= 0 }

// DebugView returns the inspected slot, ok false when cycling is off.
func (r *Renderer) DebugView(s *scene.Scene) (DebugView, bool) {
	if !r.debug.active() {
		return DebugView{}, false
	}
	targets := s.Targets()
	if r.debug.slot < len(targets) {
		spec := targets[r.debug.slot]
		a := r.debug.attachment
		if a >= len(spec.Attachments) {
			return DebugView{Label: spec.Name + " depth", Target: spec.Name, Depth: true}, true
		}
		return DebugView{
			Label:      fmt.Sprintf("%s %s", spec.Name, attachmentName(spec, a)),
			Target:     spec.Name,
			Attachment: a,
		}, true
	}

	var name string
	switch r.debug.slot - len(targets) {
	case slotDirectShadow:
		name = DirectShadowTarget
	case slotPointShadow:
		name = PointShadowTarget(0)
	default:
		name = SpotShadowTarget(0)
	}
	return DebugView{Label: name, Target: name, Depth: true}, true
}

func attachmentName(spec scene.TargetSpec, i int) string {
	if spec.Type == scene.TargetGBuffer && i < len(gbufferAttachments) {
		return gbufferAttachments[i]
	}
	if i < len(colorAttachments) {
		return colorAttachments[i]
	}
	return fmt.Sprintf("attachment %d", i)
}

// RenderDebug writes the FPS counter and the inspected slot's label into
// the top-left corner of the NoAA target.
func (r *Renderer) RenderDebug(s *scene.Scene) {
	if err := r.bind(scene.NoAATarget, 0); err != nil {
		r.logger.Warn("debug overlay skipped", zap.Error(err))
		return
	}
	st := BaselineState()
	st.DepthTest = false
	st.DepthWrite = false
	st.Blend = BlendAlpha
	r.device.SetState(st)

	col := mgl32.Vec4{1, 1, 0, 1}
	text := fmt.Sprintf("%.0f fps", r.debug.fps)
	r.device.Text(text, 4, 4, col)
	if v, ok := r.DebugView(s); ok {
		_, h := r.device.MeasureText(text)
		r.device.Text(v.Label, 4, 4+h+2, col)
	}
}
