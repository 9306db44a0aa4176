package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/scrapers/linkedin"
)

// terminalObserver renders run progress as a go-pretty tracker on stderr.
type terminalObserver struct {
	pw      progress.Writer
	tracker *progress.Tracker
	verbose bool
}

func newTerminalObserver(target int, verbose bool) *terminalObserver {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true

	tracker := &progress.Tracker{
		Message: "people",
		Total:   int64(target),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &terminalObserver{
		pw:      pw,
		tracker: tracker,
		verbose: verbose,
	}
}

func (o *terminalObserver) OnProgress(current, target int) {
	o.tracker.SetValue(int64(current))
}

func (o *terminalObserver) OnPersonAdded(p person.Person) {
	if o.verbose {
		o.pw.Log("+ %s (%s)", p.Name, p.ProfileURL)
	}
}

func (o *terminalObserver) OnPersonEnriched(p person.Person) {
	if o.verbose {
		o.pw.Log("~ %s: %d experiences, %d education", p.Name, len(p.Experiences), len(p.Education))
	}
}

func (o *terminalObserver) OnWarning(message string) {
	o.pw.Log("! %s", message)
	slog.Debug("scraper warning", "message", message)
}

func (o *terminalObserver) OnComplete(result linkedin.Result) {
	o.tracker.SetValue(int64(len(result.People)))
	switch result.Stop {
	case linkedin.StopFailed, linkedin.StopCancelled:
		o.tracker.MarkAsErrored()
	default:
		o.tracker.MarkAsDone()
	}
	o.pw.Stop()
	for o.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
