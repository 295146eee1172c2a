package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Confirm asks a yes/no question and reads one line from r. Only "j", "ja",
// "y" and "yes" count as yes. The read is abandoned when ctx is done.
func Confirm(ctx context.Context, r io.Reader, w io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(w, FormatPrompt(question+" [j/N]")); err != nil {
		return false, err
	}

	type result struct {
		err  error
		line string
	}
	resultCh := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) && line != "" {
			err = nil
		}
		resultCh <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil {
			return false, res.err
		}
		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "j", "ja", "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
