package download

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"time"
)

// Runner starts the external fetch program and waits for it to exit.
// Combined stdout and stderr are written to out.
type Runner interface {
	Run(ctx context.Context, name string, args []string, out io.Writer) error
}

// ExecRunner runs the program directly from an argument vector, without a
// shell. Cancelling ctx kills the process; WaitDelay bounds how long Run
// waits for its output pipes afterwards.
type ExecRunner struct {
	WaitDelay time.Duration
}

// NewExecRunner creates an ExecRunner with a 5s pipe drain limit.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 5 * time.Second}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args []string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = r.WaitDelay
	return cmd.Run()
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
