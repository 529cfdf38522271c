package workflow

// State names the stages of one experiment run. Transitions only move
// forward; any stage error lands in StateFailed, which absorbs.
type State string

const (
	StateInit        State = "Init"
	StatePartitioned State = "Partitioned"
	StateStaged      State = "Staged"
	StateTrained     State = "Trained"
	StateDeployed    State = "Deployed"
	StateScored      State = "Scored"
	StateTornDown    State = "TornDown"
	StateFailed      State = "Failed"
)

func (s State) Terminal() bool {
	return s == StateTornDown || s == StateFailed
}
