package domain

import "context"

// Answer is a tri-state reply to a confirmation prompt.
type Answer int

const (
	// AnswerCancel aborts the whole operation.
	AnswerCancel Answer = iota
	// AnswerYes accepts the proposed action.
	AnswerYes
	// AnswerNo declines the proposed action.
	AnswerNo
)

// String returns the string representation of the answer.
func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "yes"
	case AnswerNo:
		return "no"
	default:
		return "cancel"
	}
}

// ProcessInfo identifies a running process.
type ProcessInfo struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// Prompter is consulted at each decision point of a restore.
// Implementations block until the user has answered.
type Prompter interface {
	// ConfirmCloseClient asks whether the running client processes may be terminated.
	ConfirmCloseClient(ctx context.Context, running []ProcessInfo) (Answer, error)

	// ConfirmUseLatest asks whether the most recent archive should be restored.
	ConfirmUseLatest(ctx context.Context, latest Archive) (Answer, error)

	// ChooseArchive asks for an explicit archive path. An empty path means nothing was chosen.
	ChooseArchive(ctx context.Context, dir string, candidates []Archive) (string, error)
}

// GuardResult reports whether it is safe to modify the client's files.
type GuardResult int

const (
	// GuardNotSafe means the client is still running.
	GuardNotSafe GuardResult = iota
	// GuardSafe means no client process is running.
	GuardSafe
)

// ProcessGuard makes sure the client is not running before a destructive operation.
type ProcessGuard interface {
	// Check returns GuardSafe when no client is running, possibly after closing it with
	// the prompter's consent. Termination failures are returned as errors.
	Check(ctx context.Context, prompter Prompter) (GuardResult, error)

	// Running lists the matching client processes.
	Running(ctx context.Context) ([]ProcessInfo, error)
}
