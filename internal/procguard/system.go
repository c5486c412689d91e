package procguard

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

type systemSource struct{}

// SystemSource returns a ProcessSource backed by the operating system process table.
func SystemSource() ProcessSource {
	return systemSource{}
}

func (systemSource) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, systemProcess{p: p})
	}
	return out, nil
}

type systemProcess struct {
	p *process.Process
}

func (s systemProcess) PID() int32 {
	return s.p.Pid
}

func (s systemProcess) Name(ctx context.Context) (string, error) {
	return s.p.NameWithContext(ctx)
}

func (s systemProcess) Kill(ctx context.Context) error {
	return s.p.KillWithContext(ctx)
}

func (s systemProcess) IsRunning(ctx context.Context) (bool, error) {
	return s.p.IsRunningWithContext(ctx)
}
