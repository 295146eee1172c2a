package cli

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// spinInterval is how often the spinner advances.
const spinInterval = 120 * time.Millisecond

// Spin shows a spinner with description on w while fn runs. The spinner is
// cleared before Spin returns.
func Spin[T any](ctx context.Context, w io.Writer, description string, fn func(context.Context) (T, error)) (T, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	result, err := fn(ctx)

	close(stop)
	<-stopped
	_ = bar.Finish()
	return result, err
}
