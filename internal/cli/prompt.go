package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// latestDateLayout renders the date shown when offering the latest archive.
const latestDateLayout = "02/01/2006 at 3:04 PM"

// terminalPrompter asks restore questions on a line-oriented terminal.
//
// Without an interactive terminal every question is answered with Cancel,
// unless assumeYes or file answer it up front.
type terminalPrompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	// assumeYes closes the client and restores the latest archive without asking.
	assumeYes bool
	// file restores this archive instead of offering the latest one.
	file string
}

func newTerminalPrompter(in io.Reader, out io.Writer, assumeYes bool, file string) *terminalPrompter {
	return &terminalPrompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isInteractive(in),
		assumeYes:   assumeYes,
		file:        file,
	}
}

// isInteractive reports whether r is a terminal.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *terminalPrompter) ConfirmCloseClient(ctx context.Context, running []domain.ProcessInfo) (domain.Answer, error) {
	if p.assumeYes {
		return domain.AnswerYes, nil
	}
	if !p.interactive {
		return domain.AnswerCancel, nil
	}

	pids := make([]string, 0, len(running))
	for _, proc := range running {
		pids = append(pids, strconv.Itoa(int(proc.PID)))
	}

	fmt.Fprintf(p.out, "League of Legends client is running (pid %s). It needs to be closed before restoring.\n",
		strings.Join(pids, ", "))
	line, err := p.ask(ctx, "Close now? [y/N] ")
	if err != nil {
		return domain.AnswerCancel, err
	}
	if isYes(line) {
		return domain.AnswerYes, nil
	}
	return domain.AnswerNo, nil
}

func (p *terminalPrompter) ConfirmUseLatest(ctx context.Context, latest domain.Archive) (domain.Answer, error) {
	switch {
	case p.file != "":
		return domain.AnswerNo, nil
	case p.assumeYes:
		return domain.AnswerYes, nil
	case !p.interactive:
		return domain.AnswerCancel, nil
	}

	fmt.Fprintf(p.out, "Your latest backup is from %s (%s, %s).\n",
		latest.CreatedAt.Format(latestDateLayout),
		humanize.Time(latest.CreatedAt),
		humanize.Bytes(uint64(latest.Size)),
	)
	line, err := p.ask(ctx, "Do you want to use this backup? [y]es / [n]o, pick another / [c]ancel: ")
	if err != nil {
		return domain.AnswerCancel, err
	}

	switch {
	case isYes(line):
		return domain.AnswerYes, nil
	case isNo(line):
		return domain.AnswerNo, nil
	default:
		return domain.AnswerCancel, nil
	}
}

func (p *terminalPrompter) ChooseArchive(ctx context.Context, dir string, candidates []domain.Archive) (string, error) {
	if p.file != "" {
		return p.file, nil
	}
	if !p.interactive {
		return "", nil
	}

	fmt.Fprintf(p.out, "Backups in %s:\n", dir)
	for i, a := range candidates {
		fmt.Fprintf(p.out, "  %2d) %s  %s  %s\n", i+1, a.Name,
			a.CreatedAt.Format(latestDateLayout), humanize.Bytes(uint64(a.Size)))
	}

	line, err := p.ask(ctx, "Enter a number or the path of an archive (empty to cancel): ")
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", nil
	}

	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(candidates) {
			fmt.Fprintf(p.out, "No backup number %d.\n", n)
			return "", nil
		}
		return candidates[n-1].Path, nil
	}
	return line, nil
}

// ask prints question and reads one trimmed line. End of input reads as an empty line.
func (p *terminalPrompter) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "y" || s == "yes"
}

func isNo(s string) bool {
	s = strings.ToLower(s)
	return s == "n" || s == "no"
}

// Ensure terminalPrompter implements domain.Prompter.
var _ domain.Prompter = (*terminalPrompter)(nil)
