// The viewer interaction controller. It owns pan/zoom state for the
// image currently open in the viewer and resolves raw pointer, wheel and
// touch input into pan, zoom, or switch-to-adjacent-image intents. It is
// a plain state machine with no rendering dependencies so every gesture
// rule can be tested directly.

package viewer

import (
	"math"
	"time"
)

// Phase is the current gesture phase of the controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhasePinching
)

// WheelMode selects what the mouse wheel does. It is a user preference,
// not internal gesture state.
type WheelMode int

const (
	WheelZoom WheelMode = iota
	WheelNavigate
)

// Switch directions returned from gesture handlers. Zero means no
// switch intent was produced.
const (
	SwitchNone = 0
	SwitchNext = 1
	SwitchPrev = -1
)

// Touch is a single touch contact in viewport coordinates.
type Touch struct {
	X, Y float64
}

// Options holds the tunable gesture constants.
type Options struct {
	MaxScale             float64
	ZoomStep             float64
	WheelSwitchThreshold float64
	SwipeThreshold       float64 // horizontal travel at fit scale
	EdgeSwipeThreshold   float64 // overflow travel while zoomed in
	WheelResetWindow     time.Duration
}

// DefaultOptions returns the stock gesture constants.
func DefaultOptions() Options {
	return Options{
		MaxScale:             20,
		ZoomStep:             1.1,
		WheelSwitchThreshold: 40,
		SwipeThreshold:       50,
		EdgeSwipeThreshold:   65,
		WheelResetWindow:     200 * time.Millisecond,
	}
}

// dragTolerance keeps no-op drags from masking swipe gestures: panning
// is only allowed once the image is zoomed strictly past fit scale.
const dragTolerance = 1.001

// swipeScaleFactor: below minScale*swipeScaleFactor a single finger
// swipes between images instead of panning.
const swipeScaleFactor = 2.0

// Controller resolves input events for a single focused image.
type Controller struct {
	opts Options
	now  func() time.Time

	containerW float64
	containerH float64

	path     string
	naturalW float64
	naturalH float64
	loaded   bool
	failed   bool

	scale float64
	panX  float64
	panY  float64

	phase     Phase
	wheelMode WheelMode

	// drag tracking
	dragOriginX float64
	dragOriginY float64
	panOriginX  float64
	panOriginY  float64

	// fit-scale swipe tracking: travel only, the image never pans
	swipeTracking bool
	swipeDist     float64

	// zoomed-in edge-swipe tracking
	edgeSwipeDist float64

	// pinch tracking
	pinchDist float64

	// wheel-navigate accumulator
	wheelAcc  float64
	lastWheel time.Time
}

// New creates a controller. A nil now falls back to time.Now; tests
// inject their own clock to drive the wheel-accumulator reset window.
func New(opts Options, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = 1.1
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = 20
	}
	if opts.WheelResetWindow <= 0 {
		opts.WheelResetWindow = 200 * time.Millisecond
	}
	return &Controller{opts: opts, now: now, scale: 1}
}

// Scale returns the current scale factor.
func (c *Controller) Scale() float64 { return c.scale }

// Pan returns the current pan offset in pixels.
func (c *Controller) Pan() (x, y float64) { return c.panX, c.panY }

// CurrentPhase returns the gesture phase.
func (c *Controller) CurrentPhase() Phase { return c.phase }

// Path returns the identity of the current subject image.
func (c *Controller) Path() string { return c.path }

// Failed reports whether the current subject failed to load.
func (c *Controller) Failed() bool { return c.failed }

// SetWheelMode switches the wheel between zooming and navigating.
func (c *Controller) SetWheelMode(m WheelMode) { c.wheelMode = m }

// MinScale is the fit scale for the current image and viewport: the
// image's natural size exactly fills the container on one axis.
func (c *Controller) MinScale() float64 {
	if !c.loaded || c.naturalW <= 0 || c.naturalH <= 0 || c.containerW <= 0 || c.containerH <= 0 {
		return 1
	}
	return math.Min(c.containerW/c.naturalW, c.containerH/c.naturalH)
}

// SetViewport records the container size and re-applies the scale and
// pan bounds against it.
func (c *Controller) SetViewport(w, h float64) {
	c.containerW, c.containerH = w, h
	if c.loaded {
		c.scale = c.clampScale(c.scale)
		c.clampPan()
	}
}

// SetSubject points the controller at a new image, identified by path.
// A change of identity resets scale to a placeholder of 1 until the new
// image's natural size is known, zeroes the pan and every gesture
// accumulator. Re-setting the same path is a no-op so a metadata-only
// refresh never disturbs the view.
func (c *Controller) SetSubject(path string) {
	if path == c.path {
		return
	}
	c.path = path
	c.loaded = false
	c.failed = false
	c.naturalW, c.naturalH = 0, 0
	c.scale = 1
	c.panX, c.panY = 0, 0
	c.resetGestures()
}

// SubjectLoaded records the natural dimensions of the subject once it
// has loaded and snaps the view to fit scale.
func (c *Controller) SubjectLoaded(naturalW, naturalH float64) {
	c.naturalW, c.naturalH = naturalW, naturalH
	c.loaded = true
	c.failed = false
	c.scale = c.MinScale()
	c.panX, c.panY = 0, 0
	c.resetGestures()
}

// SubjectFailed marks the subject as unloadable. Pan and scale keep
// their last values; all input is ignored until a new subject loads.
func (c *Controller) SubjectFailed() {
	c.failed = true
	c.loaded = false
	c.resetGestures()
}

func (c *Controller) resetGestures() {
	c.phase = PhaseIdle
	c.swipeTracking = false
	c.swipeDist = 0
	c.edgeSwipeDist = 0
	c.pinchDist = 0
	c.wheelAcc = 0
}

// --- view mode operations ---

// FitToWindow resets to fit scale with a centered image.
func (c *Controller) FitToWindow() {
	if !c.loaded {
		return
	}
	c.scale = c.MinScale()
	c.panX, c.panY = 0, 0
}

// FillWindow scales until the image covers the container on both axes
// (crop mode, no letterboxing).
func (c *Controller) FillWindow() {
	if !c.loaded || c.naturalW <= 0 || c.naturalH <= 0 {
		return
	}
	fill := math.Max(c.containerW/c.naturalW, c.containerH/c.naturalH)
	c.scale = c.clampScale(fill)
	c.clampPan()
}

// ActualSize shows the image at 1:1 pixel scale.
func (c *Controller) ActualSize() {
	if !c.loaded {
		return
	}
	c.scale = c.clampScale(1)
	c.clampPan()
}

// --- wheel ---

// Wheel feeds one wheel event. In zoom mode the scale changes
// immediately; in navigate mode deltas accumulate and the return value
// carries at most one switch step per threshold crossing, regardless of
// how large a single delta is.
func (c *Controller) Wheel(deltaY float64) int {
	if !c.loaded {
		return SwitchNone
	}
	if c.wheelMode == WheelZoom {
		// Wheel-down (positive deltaY) zooms out.
		if deltaY > 0 {
			c.zoomBy(1 / c.opts.ZoomStep)
		} else if deltaY < 0 {
			c.zoomBy(c.opts.ZoomStep)
		}
		return SwitchNone
	}

	ts := c.now()
	if !c.lastWheel.IsZero() && ts.Sub(c.lastWheel) > c.opts.WheelResetWindow {
		// Slow drift must not eventually fire a spurious switch.
		c.wheelAcc = 0
	}
	c.lastWheel = ts

	c.wheelAcc += deltaY
	if math.Abs(c.wheelAcc) < c.opts.WheelSwitchThreshold {
		return SwitchNone
	}
	dir := SwitchNext
	if c.wheelAcc < 0 {
		dir = SwitchPrev
	}
	// Exactly one step per crossing; a huge fling is still one image.
	c.wheelAcc = 0
	return dir
}

// --- mouse drag ---

// PointerDown begins a mouse drag. Dragging is disabled at fit scale so
// that no-op drags never swallow swipe gestures.
func (c *Controller) PointerDown(x, y float64) {
	if !c.loaded || c.phase != PhaseIdle {
		return
	}
	if c.scale <= c.MinScale()*dragTolerance {
		return
	}
	c.beginDrag(x, y)
}

// PointerMove pans while dragging.
func (c *Controller) PointerMove(x, y float64) {
	if !c.loaded || c.phase != PhaseDragging {
		return
	}
	c.panX = c.panOriginX + (x - c.dragOriginX)
	c.panY = c.panOriginY + (y - c.dragOriginY)
	c.clampPan()
}

// PointerUp ends a mouse drag.
func (c *Controller) PointerUp() {
	if c.phase == PhaseDragging {
		c.phase = PhaseIdle
	}
}

func (c *Controller) beginDrag(x, y float64) {
	c.phase = PhaseDragging
	c.dragOriginX, c.dragOriginY = x, y
	c.panOriginX, c.panOriginY = c.panX, c.panY
}

// --- touch ---

// TouchStart begins a touch gesture. One contact either arms the
// fit-scale swipe tracker or starts a pan drag, depending on zoom
// level; a second contact switches to pinching.
func (c *Controller) TouchStart(touches []Touch) {
	if !c.loaded || len(touches) == 0 {
		return
	}
	if len(touches) >= 2 {
		c.phase = PhasePinching
		c.pinchDist = dist(touches[0], touches[1])
		c.swipeTracking = false
		c.swipeDist = 0
		return
	}

	t := touches[0]
	if c.scale <= c.MinScale()*swipeScaleFactor {
		// Near fit scale a single finger is a page-switch gesture:
		// track travel only, the image stays pinned at (0,0).
		c.swipeTracking = true
		c.swipeDist = 0
		c.dragOriginX, c.dragOriginY = t.X, t.Y
		if c.scale > c.MinScale()*dragTolerance {
			c.phase = PhaseDragging
		}
		return
	}
	c.edgeSwipeDist = 0
	c.beginDrag(t.X, t.Y)
}

// TouchMove advances the active touch gesture.
func (c *Controller) TouchMove(touches []Touch) {
	if !c.loaded || len(touches) == 0 {
		return
	}

	if c.phase == PhasePinching {
		if len(touches) < 2 {
			return
		}
		d := dist(touches[0], touches[1])
		if c.pinchDist > 0 && d > 0 {
			c.zoomBy(d / c.pinchDist)
		}
		c.pinchDist = d
		return
	}

	// A second finger arriving mid-drag promotes the gesture to a pinch.
	if len(touches) >= 2 {
		c.TouchStart(touches)
		return
	}

	t := touches[0]
	if c.swipeTracking {
		c.swipeDist = t.X - c.dragOriginX
		return
	}
	if c.phase != PhaseDragging {
		return
	}

	dx := t.X - c.dragOriginX
	dy := t.Y - c.dragOriginY
	wantX := c.panOriginX + dx
	wantY := c.panOriginY + dy
	c.panX, c.panY = wantX, wantY
	c.clampPan()

	// Dragging against the horizontal clamp boundary is repurposed as a
	// page-switch signal, but only while the motion is mostly horizontal.
	overflow := wantX - c.panX
	if overflow != 0 && math.Abs(dx) > math.Abs(dy) {
		c.edgeSwipeDist = overflow
	}
}

// TouchEnd finishes a touch gesture and reports any switch intent.
// Positive travel (finger moving right) reveals the previous image;
// dragging content left brings up the next one.
func (c *Controller) TouchEnd(remaining []Touch) int {
	if !c.loaded {
		return SwitchNone
	}

	if c.phase == PhasePinching {
		if len(remaining) < 2 {
			c.phase = PhaseIdle
			c.pinchDist = 0
		}
		return SwitchNone
	}

	c.phase = PhaseIdle

	if c.swipeTracking {
		travel := c.swipeDist
		c.swipeTracking = false
		c.swipeDist = 0
		if travel >= c.opts.SwipeThreshold {
			return SwitchPrev
		}
		if travel <= -c.opts.SwipeThreshold {
			return SwitchNext
		}
		return SwitchNone
	}

	overflow := c.edgeSwipeDist
	c.edgeSwipeDist = 0
	if overflow >= c.opts.EdgeSwipeThreshold {
		return SwitchPrev
	}
	if overflow <= -c.opts.EdgeSwipeThreshold {
		return SwitchNext
	}
	return SwitchNone
}

// --- scale & clamp helpers ---

func (c *Controller) zoomBy(factor float64) {
	c.scale = c.clampScale(c.scale * factor)
	// Zooming out must never leave the image stranded outside the view.
	c.clampPan()
}

func (c *Controller) clampScale(s float64) float64 {
	min := c.MinScale()
	if s < min {
		return min
	}
	if s > c.opts.MaxScale {
		return c.opts.MaxScale
	}
	return s
}

// clampPan bounds the pan offset so the image edges never leave the
// viewport while zoomed in. When the scaled image is smaller than the
// container on an axis, the offset collapses to 0 on that axis.
func (c *Controller) clampPan() {
	maxX := math.Max(0, (c.scale*c.naturalW-c.containerW)/2)
	maxY := math.Max(0, (c.scale*c.naturalH-c.containerH)/2)
	c.panX = clamp(c.panX, -maxX, maxX)
	c.panY = clamp(c.panY, -maxY, maxY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dist(a, b Touch) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
