package render

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/geom"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
	"go.uber.org/zap"
)

// ErrNoCamera is returned by RenderScene when the scene has no active camera.
var ErrNoCamera = errors.New("render: scene has no active camera")

// Shadow target names.
const (
	DirectShadowTarget = "shadow.direct"
	spotShadowPrefix   = "shadow.spot."
	pointShadowPrefix  = "shadow.point."
)

// SpotShadowTarget is the shadow target of the i-th visible spot light.
func SpotShadowTarget(i int) string { return fmt.Sprintf("%s%d", spotShadowPrefix, i) }

// PointShadowTarget is the shadow target of the i-th visible point light.
func PointShadowTarget(i int) string { return fmt.Sprintf("%s%d", pointShadowPrefix, i) }

// Options are the renderer's presentation settings.
type Options struct {
	SelectionColor mgl32.Vec4
	SelectionWidth float32
	FocusColor     mgl32.Vec4
	FocusWidth     float32
	LabelColor     mgl32.Vec4
	// Ambient is used when the scene has no direct light.
	Ambient       mgl32.Vec3
	MaxShadowSize int

	// Global overlay switches; per-model flags apply as well.
	ShowNormals bool
	ShowBounds  object.BoundsMode
	ShowLights  bool
	ShowDebug   bool
}

func DefaultOptions() Options {
	return Options{
		SelectionColor: mgl32.Vec4{1, 0.6, 0, 1},
		SelectionWidth: 3,
		FocusColor:     mgl32.Vec4{0.2, 0.6, 1, 1},
		FocusWidth:     2,
		LabelColor:     mgl32.Vec4{0.1, 0.1, 0.1, 1},
		Ambient:        mgl32.Vec3{0.25, 0.25, 0.25},
		MaxShadowSize:  2048,
	}
}

// Sort2D orders floor-plan models; the first is drawn first.
type Sort2D func(s *scene.Scene, a, b *object.Model2D) int

// DefaultSort2D draws back to front by the height of each model's 3D buddy,
// falling back to the model's own depth.
func DefaultSort2D(s *scene.Scene, a, b *object.Model2D) int {
	ka, kb := sortKey(s, a), sortKey(s, b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

func sortKey(s *scene.Scene, m *object.Model2D) float32 {
	if b := s.Buddy3D(m); b != nil {
		return b.Position[1]
	}
	return m.Depth
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Models3D     int
	Visible3D    int
	Models2D     int
	Visible2D    int
	PointLights  int
	SpotLights   int
	ShadowPasses int
	LightPasses  int
	DrawCalls    int
	Duration     time.Duration
}

// Renderer runs the per-frame algorithm against a Device.
type Renderer struct {
	device Device
	logger *zap.Logger
	Opts   Options

	sort2D  Sort2D
	width   int
	height  int
	created map[string]TargetDesc

	visible3d []*object.Model3D
	visible2d []*object.Model2D
	points    []*object.PointLight
	spots     []*object.SpotLight

	directShadow ShadowSource
	spotShadows  []ShadowSource
	pointShadows []ShadowSource

	debug     debugState
	stats     FrameStats
	lastStats FrameStats
}

func NewRenderer(device Device, opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		device:  device,
		logger:  logger.Named("renderer"),
		Opts:    opts,
		sort2D:  DefaultSort2D,
		created: make(map[string]TargetDesc),
		debug:   debugState{slot: -1},
	}
}

func (r *Renderer) Device() Device { return r.device }

// Stats returns the statistics of the last frame.
func (r *Renderer) Stats() FrameStats { return r.lastStats }

// SetModelSort2D replaces the floor-plan draw order. nil restores the
// default.
func (r *Renderer) SetModelSort2D(fn Sort2D) {
	if fn == nil {
		fn = DefaultSort2D
	}
	r.sort2D = fn
}

// RenderScene draws one frame of s from its active camera. dt feeds the FPS
// counter of the debug overlay.
func (r *Renderer) RenderScene(s *scene.Scene, dt float64) error {
	cam := s.ActiveCamera()
	if cam == nil {
		return ErrNoCamera
	}
	start := time.Now()
	r.stats = FrameStats{}

	if err := r.ensureTargets(s); err != nil {
		return err
	}

	cam.SetAspect(r.width, r.height)
	cam.Recalculate()
	r.device.SetState(BaselineState())

	var err error
	if cam.Projection == object.Orthographic {
		err = r.RenderScene2D(s)
	} else {
		err = r.RenderScene3D(s)
	}
	if err != nil {
		return err
	}

	r.debug.tick(dt)
	if r.Opts.ShowDebug || r.debug.active() {
		r.RenderDebug(s)
	}

	r.stats.Duration = time.Since(start)
	r.lastStats = r.stats
	return nil
}

// ensureTargets creates the scene's targets at the device size, recreating
// everything when the size changed.
func (r *Renderer) ensureTargets(s *scene.Scene) error {
	w, h := r.device.Size()
	if w != r.width || h != r.height {
		for name := range r.created {
			r.device.DestroyTarget(name)
		}
		clear(r.created)
		r.width, r.height = w, h
	}

	for _, spec := range s.Targets() {
		desc := TargetDesc{
			Name:        spec.Name,
			Width:       w,
			Height:      h,
			Attachments: spec.Attachments,
			Depth:       spec.DepthStencil,
			Stencil:     spec.DepthStencil,
			Layers:      1,
			Samples:     spec.Samples,
			Clear:       spec.Clear,
		}
		if err := r.target(desc); err != nil {
			return err
		}
	}
	return nil
}

// target creates desc unless an identical target exists.
func (r *Renderer) target(desc TargetDesc) error {
	if old, ok := r.created[desc.Name]; ok && r.device.HasTarget(desc.Name) {
		if old.Width == desc.Width && old.Height == desc.Height && old.Layers == desc.Layers &&
			slices.Equal(old.Attachments, desc.Attachments) {
			return nil
		}
		r.device.DestroyTarget(desc.Name)
	}
	if err := r.device.CreateTarget(desc); err != nil {
		return fmt.Errorf("create target %s: %w", desc.Name, err)
	}
	r.created[desc.Name] = desc
	r.logger.Debug("render target created", zap.String("name", desc.Name), zap.Int("width", desc.Width), zap.Int("height", desc.Height))
	return nil
}

func (r *Renderer) shadowTarget(name string, size, layers int) error {
	size = max(1, min(size, r.Opts.MaxShadowSize))
	return r.target(TargetDesc{Name: name, Width: size, Height: size, Depth: true, Layers: layers, Samples: 1})
}

// mesh3D returns the device handle of m's asset, uploading it on first use.
// Host geometry is released once the device holds it.
func (r *Renderer) mesh3D(a *asset.Asset3D) uint32 {
	if a == nil {
		return 0
	}
	if h := a.RenderHandle(); h != 0 {
		return h
	}
	if a.Ready() {
		return 0
	}
	h, err := r.device.Upload3D(a)
	if err != nil {
		r.logger.Warn("asset upload failed", zap.String("asset", a.Name), zap.Error(err))
		return 0
	}
	a.SetRenderHandle(h)
	a.RenderReady()
	return h
}

func (r *Renderer) mesh2D(a *asset.Asset2D) uint32 {
	if a == nil {
		return 0
	}
	if h := a.RenderHandle(); h != 0 {
		return h
	}
	if a.Ready() {
		return 0
	}
	h, err := r.device.Upload2D(a)
	if err != nil {
		r.logger.Warn("asset upload failed", zap.String("asset", a.Name), zap.Error(err))
		return 0
	}
	a.SetRenderHandle(h)
	a.RenderReady()
	return h
}

func (r *Renderer) draw(call DrawCall) {
	if call.Mesh == 0 {
		return
	}
	r.device.Draw(call)
	r.stats.DrawCalls++
}

func (r *Renderer) bind(name string, layer int) error {
	if err := r.device.BindTarget(name, layer); err != nil {
		return fmt.Errorf("bind %s: %w", name, err)
	}
	return nil
}

// contour draws the outline of a mesh that was just drawn with stencil
// writes: a thick wireframe pass restricted to where the stencil is not 1.
func (r *Renderer) contour(call DrawCall, color mgl32.Vec4, width float32) {
	st := BaselineState()
	st.DepthTest = false
	st.DepthWrite = false
	st.Cull = CullNone
	st.Fill = FillWire
	st.LineWidth = width
	st.Stencil = Stencil{Enabled: true, Func: StencilNotEqual, Ref: 1}
	r.device.SetState(st)

	call.Program = ProgramFlat
	call.Color = color
	call.Surface = SurfaceUnlit
	r.draw(call)
}

// highlight returns the contour color and width for a model id, ok false
// when the model is neither selected nor focused.
func (r *Renderer) highlight(s *scene.Scene, id object.ColorID) (mgl32.Vec4, float32, bool) {
	switch {
	case s.IsSelected(id):
		return r.Opts.SelectionColor, r.Opts.SelectionWidth, true
	case s.IsFocused(id):
		return r.Opts.FocusColor, r.Opts.FocusWidth, true
	}
	return mgl32.Vec4{}, 0, false
}

func stencilWriteState(base State) State {
	base.Stencil = Stencil{Enabled: true, Func: StencilAlways, Ref: 1, Write: true}
	return base
}

func cos32(rad float32) float32 { return float32(math.Cos(float64(rad))) }

func unionBounds(models []*object.Model3D, keep func(*object.Model3D) bool) geom.AABB {
	b := geom.EmptyAABB()
	for _, m := range models {
		if !keep(m) {
			continue
		}
		wb := m.WorldBounds()
		b.Extend(wb.Min)
		b.Extend(wb.Max)
	}
	return b
}
