package components

// PreyState is the prey finite-state machine state.
type PreyState uint8

const (
	PreyFindFood PreyState = iota
	PreyFindPartner
	PreyNormal
	PreyDeadBody
	PreyRottenBody
	PreyScary

	NumPreyStates = int(PreyScary) + 1
)

// PredatorState is the predator finite-state machine state.
type PredatorState uint8

const (
	PredatorFindFood PredatorState = iota
	PredatorFindPartner
	PredatorNormal
	PredatorDead

	NumPredatorStates = int(PredatorDead) + 1
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindPrey:
		return "prey"
	case KindPredator:
		return "predator"
	case KindFood:
		return "food"
	}
	return "unknown"
}

// String returns the display name for a PreyState.
func (s PreyState) String() string {
	names := PreyStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// PreyStateNames returns the display names for all prey states.
// The order matches the PreyState constants.
func PreyStateNames() []string {
	return []string{"FindFood", "FindPartner", "Normal", "DeadBody", "RottenBody", "Scary"}
}

// PreyStateCount returns the number of prey states.
func PreyStateCount() int {
	return len(PreyStateNames())
}

// Alive reports whether the prey is still an acting agent.
func (s PreyState) Alive() bool {
	return s != PreyDeadBody && s != PreyRottenBody
}

// String returns the display name for a PredatorState.
func (s PredatorState) String() string {
	names := PredatorStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// PredatorStateNames returns the display names for all predator states.
func PredatorStateNames() []string {
	return []string{"FindFood", "FindPartner", "Normal", "Dead"}
}

// PredatorStateCount returns the number of predator states.
func PredatorStateCount() int {
	return len(PredatorStateNames())
}
