// Package mark2 delivers console commands to a Minecraft server through
// the mark2 process wrapper.
//
// Every command is printed to the client's output stream exactly as it
// would run, whether or not execution is enabled, so a dry run doubles as
// a reviewable script. Execution shells out to the local mark2 binary
// ("mark2 send ...") and retries transient failures with fibonacci
// backoff.
//
// # Dependency Isolation
//
// mark2 is the only package that spawns processes or imports the retry
// helper. Consumers see a Client and the Runner seam it can be tested
// through.
package mark2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrTransport indicates that a command could not be delivered to the
// server after exhausting retries. Delivery failures do not invalidate
// the computed command sequence, so callers usually log and continue.
var ErrTransport = errors.New("mark2: command transport failed")

// IsTransportErr returns true if the error indicates a delivery failure.
func IsTransportErr(err error) bool {
	return errors.Is(err, ErrTransport)
}

// retryBase is the first fibonacci backoff interval between attempts.
var retryBase = 250 * time.Millisecond

// Runner executes one fully built argv. The default runner spawns the
// process; tests substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	return cmd.Run()
}

// Client sends console commands through mark2.
//
// The zero value prints commands to os.Stdout without executing them,
// which is the tool's default dry-run mode.
type Client struct {
	// Tab names the mark2 session to address ("mark2 send -n <tab>").
	// Empty sends to the only attached server.
	Tab string

	// Execute enables running the printed commands. When false, Send only
	// prints.
	Execute bool

	// Retries is the number of extra delivery attempts after a failure.
	Retries int

	// Out receives the printed command lines. Nil means os.Stdout.
	Out io.Writer

	// Log receives delivery diagnostics. Nil falls back to slog.Default().
	Log *slog.Logger

	// Runner executes the built argv. Nil means the real mark2 binary.
	Runner Runner
}

func (c *Client) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Client) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

func (c *Client) runner() Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return execRunner{}
}

// Send prints the mark2 command line built from args and, when Execute is
// set, runs it. Failed runs are retried with fibonacci backoff up to
// Retries extra attempts; the returned error wraps ErrTransport and names
// the command line that could not be delivered.
func (c *Client) Send(ctx context.Context, args ...string) error {
	argv := make([]string, 0, len(args)+4)
	argv = append(argv, "mark2", "send")
	if c.Tab != "" {
		argv = append(argv, "-n", c.Tab)
	}
	argv = append(argv, args...)
	line := strings.Join(argv, " ")

	fmt.Fprintln(c.out(), line)
	if !c.Execute {
		return nil
	}

	retries := c.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewFibonacci(retryBase))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.runner().Run(ctx, argv); err != nil {
			c.logger().Debug("command delivery failed",
				"command", line, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransport, line, err)
	}
	return nil
}
