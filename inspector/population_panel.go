package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/telemetry"
)

const (
	// History buffer size (number of windows to keep)
	populationHistorySize = 120 // 20 minutes at 10s windows

	// Line series indices
	seriesPrey      = 0
	seriesBodies    = 1
	seriesPredators = 2
	seriesFood      = 3
	seriesBirths    = 4
	seriesKills     = 5
	numSeries       = 6
)

// Count series share the left axis, per-window event series the right.
var (
	countSeries = []int{seriesPrey, seriesBodies, seriesPredators, seriesFood}
	eventSeries = []int{seriesBirths, seriesKills}
)

// PopulationPanel graphs population counts over the last windows.
type PopulationPanel struct {
	screenWidth  int32
	screenHeight int32

	panelWidth  int32
	panelHeight int32
	panelX      int32
	panelY      int32

	last telemetry.WindowStats

	// Ring buffers, one per series
	history      [numSeries][]float64
	historyIndex int
	historyCount int

	// Series visibility (toggled by clicking legend)
	seriesVisible [numSeries]bool

	seriesNames  [numSeries]string
	seriesColors [numSeries]rl.Color
}

// Population panel colors
var (
	colorPanelTitle  = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorPanelBg     = rl.Color{R: 20, G: 20, B: 30, A: 230}
	colorGraphBg     = rl.Color{R: 15, G: 15, B: 25, A: 255}
	colorGraphGrid   = rl.Color{R: 40, G: 40, B: 50, A: 255}
	colorGraphBorder = rl.Color{R: 60, G: 60, B: 70, A: 255}

	colorSeriesPrey      = rl.Color{R: 120, G: 200, B: 120, A: 255}
	colorSeriesBodies    = rl.Color{R: 160, G: 120, B: 60, A: 255}
	colorSeriesPredators = rl.Color{R: 230, G: 90, B: 80, A: 255}
	colorSeriesFood      = rl.Color{R: 220, G: 200, B: 80, A: 255}
	colorSeriesBirths    = rl.Color{R: 150, G: 200, B: 255, A: 255}
	colorSeriesKills     = rl.Color{R: 255, G: 150, B: 200, A: 255}
)

// NewPopulationPanel creates a panel along the bottom of the screen.
func NewPopulationPanel(screenWidth, screenHeight int32) *PopulationPanel {
	p := &PopulationPanel{panelHeight: 200, panelX: 10}
	p.Resize(screenWidth, screenHeight)

	for i := range numSeries {
		p.history[i] = make([]float64, populationHistorySize)
	}

	p.seriesVisible = [numSeries]bool{true, false, true, true, false, false}
	p.seriesNames = [numSeries]string{"Prey", "Bodies", "Predators", "Food", "Births", "Kills"}
	p.seriesColors = [numSeries]rl.Color{
		colorSeriesPrey,
		colorSeriesBodies,
		colorSeriesPredators,
		colorSeriesFood,
		colorSeriesBirths,
		colorSeriesKills,
	}
	return p
}

// Resize updates panel dimensions when the window is resized.
// The panel leaves room on the right for the inspector.
func (p *PopulationPanel) Resize(screenWidth, screenHeight int32) {
	p.screenWidth = screenWidth
	p.screenHeight = screenHeight
	p.panelWidth = max(screenWidth-PanelWidth-30, 400)
	p.panelY = screenHeight - p.panelHeight - 10
}

// Update records one flushed window.
func (p *PopulationPanel) Update(s telemetry.WindowStats) {
	p.last = s

	idx := p.historyIndex
	p.history[seriesPrey][idx] = float64(s.LivePrey)
	p.history[seriesBodies][idx] = float64(s.PreyBodies)
	p.history[seriesPredators][idx] = float64(s.PredCount)
	p.history[seriesFood][idx] = float64(s.FoodCount)
	p.history[seriesBirths][idx] = float64(s.PreyBirths + s.PredBirths)
	p.history[seriesKills][idx] = float64(s.Kills)

	p.historyIndex = (p.historyIndex + 1) % populationHistorySize
	if p.historyCount < populationHistorySize {
		p.historyCount++
	}
}

// Len returns the number of recorded windows.
func (p *PopulationPanel) Len() int {
	return p.historyCount
}

// at returns the i-th oldest recorded value of a series.
func (p *PopulationPanel) at(series, i int) float64 {
	idx := (p.historyIndex - p.historyCount + i + populationHistorySize) % populationHistorySize
	return p.history[series][idx]
}

// Toggle flips the visibility of a series.
func (p *PopulationPanel) Toggle(series int) {
	if series >= 0 && series < numSeries {
		p.seriesVisible[series] = !p.seriesVisible[series]
	}
}

// Contains reports whether a screen point lies on the panel.
func (p *PopulationPanel) Contains(x, y int32) bool {
	return x >= p.panelX && x < p.panelX+p.panelWidth && y >= p.panelY && y < p.panelY+p.panelHeight
}

// HandleInput processes mouse clicks for legend toggling.
func (p *PopulationPanel) HandleInput() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mx := rl.GetMouseX()
	my := rl.GetMouseY()

	legendY := p.panelY + p.panelHeight - 24
	legendX := p.panelX + 10

	for i := range numSeries {
		itemX := legendX + int32(i)*90
		if mx >= itemX && mx < itemX+85 && my >= legendY && my < legendY+18 {
			p.Toggle(i)
			return
		}
	}
}

// Draw renders the panel with its graph.
func (p *PopulationPanel) Draw() {
	rl.DrawRectangle(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorPanelBg)
	rl.DrawRectangleLines(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorGraphBorder)

	rl.DrawText("POPULATION", p.panelX+10, p.panelY+6, 14, colorPanelTitle)

	if p.historyCount == 0 {
		rl.DrawText("Waiting for data...", p.panelX+100, p.panelY+80, 14, ColorTextDim)
		return
	}

	barsWidth := int32(160)
	graphX := p.panelX + barsWidth + 20
	graphY := p.panelY + 24
	graphW := p.panelWidth - barsWidth - 40
	graphH := p.panelHeight - 54

	p.drawCountBars(p.panelX+10, p.panelY+28, barsWidth-20)
	p.drawGraph(graphX, graphY, graphW, graphH)
	p.drawLegend(p.panelX+10, p.panelY+p.panelHeight-24)
}

// drawCountBars draws each population as a share of all agents.
func (p *PopulationPanel) drawCountBars(x, y, width int32) {
	s := p.last
	total := float64(s.PreyCount + s.PredCount + s.FoodCount)
	if total <= 0 {
		total = 1
	}

	barHeight := int32(14)
	spacing := int32(18)

	p.drawSingleBar(x, y, width, barHeight, "Prey", float64(s.LivePrey), total, colorSeriesPrey)
	y += spacing
	p.drawSingleBar(x, y, width, barHeight, "Body", float64(s.PreyBodies), total, colorSeriesBodies)
	y += spacing
	p.drawSingleBar(x, y, width, barHeight, "Pred", float64(s.PredCount), total, colorSeriesPredators)
	y += spacing
	p.drawSingleBar(x, y, width, barHeight, "Food", float64(s.FoodCount), total, colorSeriesFood)
	y += spacing + 6
	rl.DrawText(fmt.Sprintf("t=%.0fs  mates %d", s.SimTimeSec, s.Mates), x, y, 11, ColorTextDim)
}

// drawSingleBar draws one horizontal bar.
func (p *PopulationPanel) drawSingleBar(x, y, width, height int32, label string, value, total float64, color rl.Color) {
	labelW := int32(35)
	barW := width - labelW - 45

	rl.DrawText(label, x, y, 11, ColorText)

	barX := x + labelW
	rl.DrawRectangle(barX, y, barW, height, ColorBarBg)

	fillW := int32(float32(barW) * barRatio(float32(value), float32(total)))
	rl.DrawRectangle(barX, y, fillW, height, color)

	rl.DrawText(fmt.Sprintf("%.0f", value), barX+barW+4, y, 10, ColorTextDim)
}

// drawGraph renders the line graph.
func (p *PopulationPanel) drawGraph(x, y, w, h int32) {
	rl.DrawRectangle(x, y, w, h, colorGraphBg)
	rl.DrawRectangleLines(x, y, w, h, colorGraphBorder)

	for i := int32(1); i < 4; i++ {
		gridY := y + (h * i / 4)
		rl.DrawLine(x, gridY, x+w, gridY, colorGraphGrid)
	}
	for i := int32(1); i < 6; i++ {
		gridX := x + (w * i / 6)
		rl.DrawLine(gridX, y, gridX, y+h, colorGraphGrid)
	}

	if p.historyCount < 2 {
		return
	}

	countMin, countMax := p.seriesRange(countSeries)
	eventMin, eventMax := p.seriesRange(eventSeries)

	for _, s := range countSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, countMin, countMax)
		}
	}
	for _, s := range eventSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, eventMin, eventMax)
		}
	}

	rl.DrawText(fmt.Sprintf("%.0f", countMax), x+2, y+2, 9, ColorTextDim)
	rl.DrawText(fmt.Sprintf("%.0f", countMin), x+2, y+h-10, 9, ColorTextDim)
	if p.anyVisible(eventSeries) {
		maxLabel := fmt.Sprintf("%.0f/win", eventMax)
		rl.DrawText(maxLabel, x+w-rl.MeasureText(maxLabel, 9)-2, y+2, 9, ColorTextDim)
	}
}

func (p *PopulationPanel) anyVisible(series []int) bool {
	for _, s := range series {
		if p.seriesVisible[s] {
			return true
		}
	}
	return false
}

// seriesRange finds min/max across the visible series, floored at zero.
func (p *PopulationPanel) seriesRange(series []int) (lo, hi float64) {
	lo = math.MaxFloat64
	hi = -math.MaxFloat64
	hasVisible := false

	for _, s := range series {
		if !p.seriesVisible[s] {
			continue
		}
		hasVisible = true
		for i := range p.historyCount {
			v := p.at(s, i)
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	if !hasVisible || p.historyCount == 0 {
		return 0, 1
	}
	if lo >= hi {
		return max(lo-1, 0), hi + 1
	}

	padding := (hi - lo) * 0.1
	return max(lo-padding, 0), hi + padding
}

// drawSeriesLine draws one data series as a line.
func (p *PopulationPanel) drawSeriesLine(x, y, w, h int32, series int, minVal, maxVal float64) {
	color := p.seriesColors[series]
	valueRange := maxVal - minVal
	if valueRange <= 0 {
		valueRange = 1
	}

	var prevX, prevY int32
	for i := range p.historyCount {
		v := p.at(series, i)

		px := x + int32(float64(i)*float64(w)/float64(p.historyCount-1))
		py := y + h - int32((v-minVal)/valueRange*float64(h))
		py = min(max(py, y), y+h)

		if i > 0 {
			rl.DrawLine(prevX, prevY, px, py, color)
		}
		prevX, prevY = px, py
	}
}

// drawLegend draws the interactive legend.
func (p *PopulationPanel) drawLegend(x, y int32) {
	itemWidth := int32(90)

	for i := range numSeries {
		itemX := x + int32(i)*itemWidth
		color := p.seriesColors[i]
		textColor := ColorText
		if !p.seriesVisible[i] {
			color.A = 80
			textColor = ColorTextDim
		}

		rl.DrawRectangle(itemX, y+2, 10, 10, color)
		rl.DrawText(p.seriesNames[i], itemX+14, y, 11, textColor)
	}

	hintX := x + int32(numSeries)*itemWidth + 10
	rl.DrawText("(click to toggle)", hintX, y, 10, ColorTextDim)
}
