package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.SetStepsPerUpdate(g.stepsPerUpdate - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.SetStepsPerUpdate(g.stepsPerUpdate + 1)
	}

	if rl.IsKeyPressed(rl.KeyS) {
		g.DumpStats()
	}

	if rl.IsKeyPressed(rl.KeyP) {
		g.showPopulation = !g.showPopulation
	}

	g.handleCameraInput()
	g.handleSelectionInput()
}

// handleSelectionInput routes clicks to the population panel or the
// inspector. Clicks on the controls are left to raygui.
func (g *Game) handleSelectionInput() {
	mouse := rl.GetMousePosition()
	if mouse.X >= g.screenWidth-controlsWidth && mouse.Y <= controlsHeight {
		return
	}
	if g.showPopulation && g.populationPanel.Contains(int32(mouse.X), int32(mouse.Y)) {
		g.populationPanel.HandleInput()
		return
	}
	agents := append(g.world.Prey(), g.world.Predators()...)
	g.inspector.HandleInput(g.camera, agents, agentRadius)
}

// handleResize tracks the window size so the arena stays fitted.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.camera.Resize(g.screenWidth, g.screenHeight)
	g.inspector.Resize(int32(g.screenWidth), int32(g.screenHeight))
	g.populationPanel.Resize(int32(g.screenWidth), int32(g.screenHeight))
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Screen pixels per frame; Pan converts to arena units
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
