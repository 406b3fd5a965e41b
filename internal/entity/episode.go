package entity

// Outcome is the result of an episode.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeX    Outcome = "X"
	OutcomeO    Outcome = "O"
	OutcomeDraw Outcome = "-"
)

// OutcomeFor returns the winning outcome of mark.
func OutcomeFor(mark Mark) Outcome {
	if mark == PlayerX {
		return OutcomeX
	}
	return OutcomeO
}

// IsFinished reports whether the outcome ends the game.
func (o Outcome) IsFinished() bool {
	return o != OutcomeNone
}

// Episode is the history of one game: States[i+1] is States[i] after Actions[i].
type Episode struct {
	States  []State
	Actions []int
}

func NewEpisode() *Episode {
	return &Episode{
		States: []State{NewState()},
	}
}

// Len returns the number of plies played.
func (that *Episode) Len() int {
	return len(that.Actions)
}

// Last returns the current state.
func (that *Episode) Last() State {
	return that.States[len(that.States)-1]
}

// Ply returns the state before ply i, the action played and the state after it.
func (that *Episode) Ply(i int) (State, int, State) {
	return that.States[i], that.Actions[i], that.States[i+1]
}

// Mover returns the mark that played ply i.
func (that *Episode) Mover(i int) Mark {
	return that.States[i].Turn()
}

// Append records a ply. The caller is responsible for legality.
func (that *Episode) Append(action int, next State) {
	that.Actions = append(that.Actions, action)
	that.States = append(that.States, next)
}
