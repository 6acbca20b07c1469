// Package ui is the terminal front end of an archive run.
package ui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/masmgr/gitarchive-go/internal/builder"
)

// Options configures the terminal front end.
type Options struct {
	Title string
	// Screen replaces the terminal, e.g. with a simulation screen in tests.
	Screen tcell.Screen
}

// RunArchive executes req while showing its progress. Esc, q or Ctrl+C
// cancel a running archive and close the window once it has finished.
// The returned error is only set when the terminal itself failed.
func RunArchive(ctx context.Context, b *builder.Builder, req builder.Request, opts Options) (builder.Result, error) {
	title := opts.Title
	if title == "" {
		title = "Git Archive"
	}

	app := tview.NewApplication()
	if opts.Screen != nil {
		app.SetScreen(opts.Screen)
	}
	view := NewProgressView(title)

	rep := builder.NewChannelReporter(1024)
	job := b.Start(ctx, req, rep)

	var finished atomic.Bool
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		quit := ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q'
		switch {
		case quit && finished.Load():
			app.Stop()
			return nil
		case quit:
			job.Cancel()
			view.SetHint("Cancelling...")
			return nil
		case ev.Key() == tcell.KeyEnter && finished.Load():
			app.Stop()
			return nil
		}
		return ev
	})

	d := newDrawer(app)
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		pumpEvents(rep.Events(), view, d)
	}()

	go func() {
		res := job.Wait()
		rep.Close()
		<-pumped
		finished.Store(true)
		d.draw(func() {
			view.SetHint(outcomeText(res.Outcome) + " Press q to exit.")
		})
	}()

	err := app.SetRoot(view.Root(), true).Run()
	d.stop()
	if err != nil {
		job.Cancel()
	}
	res := job.Wait()
	<-pumped
	return res, err
}

// drawer queues view updates on the application loop. QueueUpdateDraw waits
// for the loop to run f, so once the loop has returned draw gives up instead
// of blocking.
type drawer struct {
	app     *tview.Application
	stopped chan struct{}
	once    sync.Once
}

func newDrawer(app *tview.Application) *drawer {
	return &drawer{app: app, stopped: make(chan struct{})}
}

func (d *drawer) stop() {
	d.once.Do(func() { close(d.stopped) })
}

func (d *drawer) draw(f func()) {
	select {
	case <-d.stopped:
		return
	default:
	}
	queued := make(chan struct{})
	go func() {
		d.app.QueueUpdateDraw(f)
		close(queued)
	}()
	select {
	case <-queued:
	case <-d.stopped:
	}
}

// pumpEvents applies events to view until the channel is closed. After the
// drawer stops, events are still drained so the reporter never holds back.
func pumpEvents(events <-chan builder.Event, view *ProgressView, d *drawer) {
	for ev := range events {
		ev := ev
		d.draw(func() {
			switch ev.Kind {
			case builder.EventProgress:
				view.SetProgress(ev.Percent, ev.Status)
			case builder.EventLog:
				view.AppendLog(ev.Entry)
			}
		})
	}
}

func outcomeText(o builder.Outcome) string {
	switch o {
	case builder.OutcomeCompleted:
		return "Archive created."
	case builder.OutcomeCancelled:
		return "Cancelled."
	case builder.OutcomeNothingToArchive:
		return "Nothing to archive."
	case builder.OutcomeBusy:
		return "Another run is writing this output."
	default:
		return "Failed."
	}
}
