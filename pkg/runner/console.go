package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/firebreak/pkg/domain"
)

// ErrConsoleClosed is returned by Ask after Close.
var ErrConsoleClosed = errors.New("console closed")

// Console implements ports.Prompter over a line-oriented reader and writer.
// Reads happen on a background pump so a blocked read never outlives the
// caller's context. Call Close to release the pump.
type Console struct {
	reader    *bufio.Reader
	writer    io.Writer
	sanitizer Sanitizer

	lines     chan line
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
	mu        sync.Mutex
}

type line struct {
	text string
	err  error
}

// NewConsole creates a console. Nil arguments default to Stdin and Stdout.
func NewConsole(r io.Reader, w io.Writer) *Console {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Console{
		reader:    bufio.NewReader(r),
		writer:    w,
		sanitizer: NewSanitizer(),
		done:      make(chan struct{}),
	}
}

// Close stops the pump. A pump blocked on a read exits once that read
// returns. Close is idempotent.
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *Console) initPump() {
	c.startOnce.Do(func() {
		c.lines = make(chan line)
		go c.pump()
	})
}

func (c *Console) pump() {
	defer close(c.lines)
	for {
		text, err := c.reader.ReadString('\n')
		if text != "" && !c.send(line{text: text}) {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.send(line{err: err})
			}
			return
		}
	}
}

// send hands l to Ask, giving up when the console is closed.
func (c *Console) send(l line) bool {
	select {
	case c.lines <- l:
		return true
	case <-c.done:
		return false
	}
}

// Ask prints prompt and returns the next sanitized line.
// End of input yields domain.ErrSuspended so the run is parked, not failed.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-c.done:
		return "", ErrConsoleClosed
	default:
	}
	c.initPump()
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.writer, "\n%s\n> ", prompt)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.done:
			return "", ErrConsoleClosed
		case res, ok := <-c.lines:
			if !ok {
				fmt.Fprintln(c.writer)
				return "", domain.ErrSuspended
			}
			if res.err != nil {
				return "", fmt.Errorf("read input: %w", res.err)
			}
			clean, err := c.sanitizer.Clean(res.text)
			if err != nil {
				fmt.Fprintf(c.writer, "Error: %v. Please try again.\n> ", err)
				continue
			}
			return clean, nil
		}
	}
}

// Say prints an informational line.
func (c *Console) Say(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(c.writer, msg)
	return err
}

// Writer returns the console output.
func (c *Console) Writer() io.Writer {
	return c.writer
}
