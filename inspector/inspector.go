package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/geom"
	"github.com/pthm-cable/meadow/sim"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
)

// hitSlack is added to an agent's radius when picking, in arena units.
const hitSlack = 5

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorPerception  = rl.Color{R: 200, G: 200, B: 200, A: 50}
	ColorScary       = rl.Color{R: 90, G: 170, B: 255, A: 70}
	ColorTargetLine  = rl.Color{R: 255, G: 200, B: 100, A: 160}
)

// Limits is what the panel scales its bars against.
type Limits struct {
	DieThreshold     float64
	MaxHealth        float64
	BodyIntegrity    float64
	PerceptionRadius float64
	ScaryRadius      float64 // prey only
}

// Inspector manages agent selection and panel rendering.
// Selection is by agent ID, which stays valid across removals.
type Inspector struct {
	selected     uint32
	hasSelected  bool
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
}

// NewInspector creates a new inspector instance.
func NewInspector(screenWidth, screenHeight int32) *Inspector {
	ins := &Inspector{}
	ins.Resize(screenWidth, screenHeight)
	return ins
}

// Resize moves the panel to the right edge of a resized window.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
	ins.panelX = screenWidth - PanelWidth - 10
	ins.panelY = 80
}

// Pick returns the ID of the agent under an arena position, preferring the
// closest one. radius gives the drawn radius of each agent.
func Pick(agents []sim.AgentView, at geom.Vec2, radius func(components.Kind) float64) (uint32, bool) {
	var best uint32
	bestDist := 0.0
	found := false
	for _, a := range agents {
		hit := radius(a.Kind) + hitSlack
		d := at.Sub(a.Pos).LenSq()
		if d <= hit*hit && (!found || d < bestDist) {
			best, bestDist, found = a.ID, d, true
		}
	}
	return best, found
}

// HandleInput processes click detection for agent selection.
func (ins *Inspector) HandleInput(cam *camera.Camera, agents []sim.AgentView, radius func(components.Kind) float64) {
	// Right click or Escape to deselect
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}

	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	mx, my := int32(mouse.X), int32(mouse.Y)

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if mx >= closeX && mx <= closeX+20 && my >= closeY && my <= closeY+20 {
			ins.Deselect()
			return
		}
		// Clicks inside the panel are ignored
		if mx >= ins.panelX && mx <= ins.panelX+PanelWidth && my >= ins.panelY {
			return
		}
	}

	wx, wy := cam.ScreenToWorld(mouse.X, mouse.Y)
	if id, ok := Pick(agents, geom.V(float64(wx), float64(wy)), radius); ok {
		ins.Select(id)
	}
}

// Select sets the inspected agent.
func (ins *Inspector) Select(id uint32) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the ID of the selected agent.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// Find returns the selected agent from agents. The selection is cleared
// when the agent no longer exists.
func (ins *Inspector) Find(agents []sim.AgentView) (sim.AgentView, bool) {
	if !ins.hasSelected {
		return sim.AgentView{}, false
	}
	for _, a := range agents {
		if a.ID == ins.selected {
			return a, true
		}
	}
	ins.Deselect()
	return sim.AgentView{}, false
}

// stateName returns the FSM state shown for an agent.
func stateName(a sim.AgentView) string {
	if a.Kind == components.KindPredator {
		return a.PredatorState.String()
	}
	return a.PreyState.String()
}

// Draw renders the inspector panel for the selected agent.
func (ins *Inspector) Draw(a sim.AgentView, lim Limits) {
	panelHeight := ins.panelHeight(a)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  %s  gen %d", a.ID, a.Kind, a.Generation), x, y, 14, ColorHeaderText)
	y += 22
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	y += DrawLabel(x, y, "State", stateName(a))
	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.0f, %.0f)", a.Pos.X, a.Pos.Y))
	if a.HasTarget {
		y += DrawLabel(x, y, "Target", fmt.Sprintf("(%.0f, %.0f)", a.Target.X, a.Target.Y))
	} else {
		y += DrawLabel(x, y, "Target", "none")
	}
	y += DrawLabel(x, y, "Speed", fmt.Sprintf("%.1f", a.Speed))
	y += DrawAngle(x, y, "Heading", float32(a.Heading))

	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	y += DrawBar(x, y, "Hunger", float32(a.Hunger), float32(lim.DieThreshold), true)
	if a.Kind == components.KindPrey {
		if a.PreyState.Alive() {
			y += DrawBar(x, y, "Health", float32(a.Health), float32(lim.MaxHealth), false)
		} else {
			y += DrawBar(x, y, "Body", float32(a.Integrity), float32(lim.BodyIntegrity), false)
		}
	}
	y += DrawBool(x, y, "Eating", a.Eating)
	DrawBool(x, y, "Ready", a.ReproductionReady)
}

// panelHeight computes the panel height for the rows Draw renders.
func (ins *Inspector) panelHeight(a sim.AgentView) int32 {
	height := int32(HeaderHeight + PanelPadding)
	height += 22 + 8      // ID line, separator
	height += 20 * 4      // state, position, target, speed
	height += angleHeight // heading
	height += 12          // separator
	height += 18          // hunger
	if a.Kind == components.KindPrey {
		height += 18 // health or body
	}
	height += 18 * 2 // eating, ready
	height += PanelPadding
	return height
}

// DrawSelectionHighlight rings the selected agent and shows its perception
// radius and current target.
func DrawSelectionHighlight(cam *camera.Camera, a sim.AgentView, radius float32, lim Limits) {
	cx, cy := cam.WorldToScreen(float32(a.Pos.X), float32(a.Pos.Y))
	center := rl.Vector2{X: cx, Y: cy}

	rl.DrawCircleLines(int32(cx), int32(cy), radius*1.8*cam.Zoom, rl.Yellow)
	drawCircle(center, float32(lim.PerceptionRadius)*cam.Zoom, ColorPerception)
	if a.Kind == components.KindPrey && lim.ScaryRadius > 0 {
		drawCircle(center, float32(lim.ScaryRadius)*cam.Zoom, ColorScary)
	}

	if a.HasTarget {
		tx, ty := cam.WorldToScreen(float32(a.Target.X), float32(a.Target.Y))
		rl.DrawLineV(center, rl.Vector2{X: tx, Y: ty}, ColorTargetLine)
	}
}

func drawCircle(c rl.Vector2, r float32, color rl.Color) {
	rl.DrawCircleLines(int32(c.X), int32(c.Y), r, color)
}
