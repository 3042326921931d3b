package feed

import (
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/sim"
)

// Message types.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
)

// Hello is sent once to every client on connect.
type Hello struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
}

// Frame is one snapshot of the world for remote viewers.
type Frame struct {
	Type      string     `json:"type"`
	Tick      int32      `json:"tick"`
	SimTime   float64    `json:"sim_time"`
	Prey      []Agent    `json:"prey"`
	Predators []Agent    `json:"predators"`
	Food      []FoodItem `json:"food"`
	Stats     FrameStats `json:"stats"`
}

// Agent is the wire form of one agent.
type Agent struct {
	ID      uint32  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Hunger  float64 `json:"hunger"`
	State   string  `json:"state"`
}

// FoodItem is the wire form of one food item.
type FoodItem struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Stock float64 `json:"stock"`
}

// FrameStats summarises the populations.
type FrameStats struct {
	Prey      int            `json:"prey"`
	LivePrey  int            `json:"live_prey"`
	Predators int            `json:"predators"`
	Food      int            `json:"food"`
	PreyState map[string]int `json:"prey_state"`
	PredState map[string]int `json:"predator_state"`
	Births    int            `json:"births"`
	Kills     int            `json:"kills"`
}

// BuildFrame reads the world into a frame.
func BuildFrame(w *sim.World) Frame {
	st := w.Stats()
	f := Frame{
		Type:    TypeFrame,
		Tick:    st.Tick,
		SimTime: st.SimTime.Seconds(),
		Stats: FrameStats{
			Prey:      st.Prey,
			LivePrey:  st.LivePrey,
			Predators: st.Predators,
			Food:      st.Food,
			PreyState: make(map[string]int),
			PredState: make(map[string]int),
			Births:    st.Counters.PreyBirths + st.Counters.PredatorBirths,
			Kills:     st.Counters.Kills,
		},
	}

	prey := w.Prey()
	f.Prey = make([]Agent, 0, len(prey))
	for _, v := range prey {
		f.Prey = append(f.Prey, Agent{ID: v.ID, X: v.Pos.X, Y: v.Pos.Y, Heading: v.Heading, Hunger: v.Hunger, State: v.PreyState.String()})
	}
	preds := w.Predators()
	f.Predators = make([]Agent, 0, len(preds))
	for _, v := range preds {
		f.Predators = append(f.Predators, Agent{ID: v.ID, X: v.Pos.X, Y: v.Pos.Y, Heading: v.Heading, Hunger: v.Hunger, State: v.PredatorState.String()})
	}
	food := w.Food()
	f.Food = make([]FoodItem, 0, len(food))
	for _, v := range food {
		f.Food = append(f.Food, FoodItem{X: v.Pos.X, Y: v.Pos.Y, Stock: v.Stock})
	}

	for i, n := range st.PreyByState {
		if n > 0 {
			f.Stats.PreyState[components.PreyState(i).String()] = n
		}
	}
	for i, n := range st.PredatorByState {
		if n > 0 {
			f.Stats.PredState[components.PredatorState(i).String()] = n
		}
	}
	return f
}
