package game

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/geom"
	"github.com/pthm-cable/meadow/inspector"
	"github.com/pthm-cable/meadow/sim"
)

// Agent sizes in arena units.
const (
	preyRadius     = 5
	predatorRadius = 8
	foodRadius     = 3
)

// Controls area in the top-right corner, in screen pixels.
const (
	controlsWidth  = 230
	controlsHeight = 70
)

// agentRadius returns the drawn radius of an agent kind.
func agentRadius(k components.Kind) float64 {
	if k == components.KindPredator {
		return predatorRadius
	}
	return preyRadius
}

var (
	arenaColor     = rl.NewColor(18, 28, 22, 255)
	arenaEdgeColor = rl.NewColor(60, 80, 64, 255)
	foodColor      = rl.NewColor(120, 200, 90, 255)
	predatorColor  = rl.NewColor(220, 60, 50, 255)
	bodyColor      = rl.NewColor(110, 90, 70, 255)
)

// preyColors is indexed by components.PreyState.
var preyColors = [components.NumPreyStates]rl.Color{
	components.PreyNormal:      rl.NewColor(230, 230, 220, 255),
	components.PreyFindFood:    rl.NewColor(240, 200, 80, 255),
	components.PreyFindPartner: rl.NewColor(240, 130, 200, 255),
	components.PreyScary:       rl.NewColor(90, 170, 255, 255),
	components.PreyDeadBody:    bodyColor,
	components.PreyRottenBody:  bodyColor,
}

// screenPoint maps an arena position through the camera.
func (g *Game) screenPoint(p geom.Vec2) rl.Vector2 {
	x, y := g.camera.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: x, Y: y}
}

// Draw renders the game.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	a := g.world.Arena()
	x0, y0 := g.camera.WorldToScreen(0, 0)
	zoom := g.camera.Zoom
	rect := rl.Rectangle{X: x0, Y: y0, Width: float32(a.Width()) * zoom, Height: float32(a.Height()) * zoom}
	rl.DrawRectangleRec(rect, arenaColor)
	rl.DrawRectangleLinesEx(rect, 1, arenaEdgeColor)

	for _, f := range g.world.Food() {
		if g.camera.IsVisible(float32(f.Pos.X), float32(f.Pos.Y), foodRadius) {
			rl.DrawCircleV(g.screenPoint(f.Pos), foodRadius*zoom, foodColor)
		}
	}
	prey := g.world.Prey()
	predators := g.world.Predators()
	for _, p := range prey {
		g.drawAgent(p, preyRadius, preyColors[p.PreyState])
	}
	for _, p := range predators {
		g.drawAgent(p, predatorRadius, predatorColor)
	}

	selected, hasSelected := g.inspector.Find(append(prey, predators...))
	if hasSelected {
		inspector.DrawSelectionHighlight(g.camera, selected, float32(agentRadius(selected.Kind)), g.inspectorLimits(selected.Kind))
	}

	g.drawHUD()
	g.drawControls()
	if g.showPopulation {
		g.populationPanel.Draw()
	}
	if hasSelected {
		g.inspector.Draw(selected, g.inspectorLimits(selected.Kind))
	}

	rl.EndDrawing()
}

// inspectorLimits returns the scales the inspector draws against.
func (g *Game) inspectorLimits(k components.Kind) inspector.Limits {
	if k == components.KindPredator {
		return inspector.Limits{
			DieThreshold:     g.cfg.Predator.DieThreshold,
			PerceptionRadius: g.cfg.Predator.PerceptionRadius,
		}
	}
	return inspector.Limits{
		DieThreshold:     g.cfg.Prey.DieThreshold,
		MaxHealth:        g.cfg.Prey.MaxHealth,
		BodyIntegrity:    g.cfg.Prey.BodyIntegrity,
		PerceptionRadius: g.cfg.Prey.PerceptionRadius,
		ScaryRadius:      g.cfg.Derived.ScaryRadius,
	}
}

// drawAgent draws a circle with a heading tick. Bodies have no heading.
func (g *Game) drawAgent(a sim.AgentView, radius float32, color rl.Color) {
	if !g.camera.IsVisible(float32(a.Pos.X), float32(a.Pos.Y), radius) {
		return
	}
	c := g.screenPoint(a.Pos)
	r := radius * g.camera.Zoom
	if a.Kind == components.KindPrey && !a.PreyState.Alive() {
		rl.DrawCircleLines(int32(c.X), int32(c.Y), r, color)
		return
	}
	rl.DrawCircleV(c, r, color)
	tip := rl.Vector2{
		X: c.X + float32(math.Cos(a.Heading))*r*1.6,
		Y: c.Y + float32(math.Sin(a.Heading))*r*1.6,
	}
	rl.DrawLineV(c, tip, color)
}

// drawHUD renders population counts and speed.
func (g *Game) drawHUD() {
	s := g.world.Stats()
	rl.DrawText(fmt.Sprintf("Tick: %d  Time: %.1fs", s.Tick, s.SimTime.Seconds()), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Prey: %d (%d bodies)  Pred: %d  Food: %d",
		s.LivePrey, s.Prey-s.LivePrey, s.Predators, s.Food), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Births: %d  Kills: %d  Rotted: %d",
		s.Counters.PreyBirths+s.Counters.PredatorBirths, s.Counters.Kills, s.Counters.Rotted), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]  FPS: %d", g.stepsPerUpdate, rl.GetFPS()), 10, 85, 20, rl.White)
	if g.paused {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
	rl.DrawText("Click agent to inspect  [P] population  [S] dump stats", 10, 135, 14, rl.Gray)
}

// drawControls renders the pause button and speed slider.
func (g *Game) drawControls() {
	panelX := g.screenWidth - controlsWidth
	panelY := float32(10)

	label := "Pause"
	if g.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 30}, label) {
		g.paused = !g.paused
	}
	if gui.Button(rl.Rectangle{X: panelX + 110, Y: panelY, Width: 100, Height: 30}, "Dump stats") {
		g.DumpStats()
	}

	speed := gui.SliderBar(
		rl.Rectangle{X: panelX + 40, Y: panelY + 40, Width: 140, Height: 20},
		"Speed",
		fmt.Sprintf("%dx", g.stepsPerUpdate),
		float32(g.stepsPerUpdate),
		1, maxStepsPerUpdate,
	)
	g.SetStepsPerUpdate(int(speed + 0.5))
}
