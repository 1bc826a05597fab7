package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/tanq16/printgrab/internal/fetch"
	"github.com/tanq16/printgrab/internal/printables"
)

// Tally counts fetch results by outcome.
type Tally struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Tabulate folds a result list into a tally.
func Tabulate(results []fetch.Result) Tally {
	var t Tally
	for _, res := range results {
		switch res.Outcome {
		case fetch.OutcomeSuccess:
			t.Succeeded++
		case fetch.OutcomeFailed:
			t.Failed++
		case fetch.OutcomeSkipped:
			t.Skipped++
		}
	}
	return t
}

// Reporter renders per-file lines and the run summary for a model. Progress
// redraws happen only when the writer is an interactive terminal; everything
// else is plain line output so piped runs stay readable.
type Reporter struct {
	w             io.Writer
	verbose       bool
	interactive   bool
	progressShown bool
	lastDraw      time.Time
}

func NewReporter(w io.Writer, verbose bool) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	interactive := false
	if f, ok := w.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{w: w, verbose: verbose, interactive: interactive}
}

// Header prints the model line once listing succeeds.
func (r *Reporter) Header(model *printables.Model, selected int) {
	fmt.Fprintln(r.w, headerStyle.Render(fmt.Sprintf("%s (model %s)", model.Name, model.ID)))
	if r.verbose {
		fmt.Fprintln(r.w, debugStyle.Render(fmt.Sprintf("  %d of %d file(s) selected", selected, len(model.Files))))
	}
}

func (r *Reporter) NoMatches() {
	fmt.Fprintln(r.w, infoStyle.Render(fmt.Sprintf("  %s No files matched the requested extensions", StyleSymbols["info"])))
}

// DryRun lists planned destinations without downloading anything.
func (r *Reporter) DryRun(items []fetch.Item) {
	pending := 0
	for _, item := range items {
		if item.Exists {
			fmt.Fprintln(r.w, warningStyle.Render(fmt.Sprintf("  %s %s exists, would skip", StyleSymbols["bullet"], item.File.Name)))
			continue
		}
		pending++
		fmt.Fprintln(r.w, detailStyle.Render(fmt.Sprintf("  %s %s (%s) to %s", StyleSymbols["arrow"], item.File.Name, FormatBytes(uint64(item.File.Size)), item.OutputPath)))
	}
	fmt.Fprintln(r.w, infoStyle.Render(fmt.Sprintf("  %s Dry run, %d file(s) would be downloaded", StyleSymbols["info"], pending)))
}

// Result prints the line for a finished item.
func (r *Reporter) Result(res fetch.Result) {
	r.clearProgress()
	switch res.Outcome {
	case fetch.OutcomeSuccess:
		speed := FormatSpeed(res.Bytes, res.Elapsed.Seconds())
		fmt.Fprintln(r.w, successStyle.Render(fmt.Sprintf("  %s %s (%s, %s)", StyleSymbols["pass"], res.Item.File.Name, FormatBytes(uint64(res.Bytes)), speed)))
	case fetch.OutcomeSkipped:
		fmt.Fprintln(r.w, warningStyle.Render(fmt.Sprintf("  %s %s exists, skipped", StyleSymbols["bullet"], res.Item.File.Name)))
	case fetch.OutcomeFailed:
		fmt.Fprintln(r.w, errorStyle.Render(fmt.Sprintf("  %s %s", StyleSymbols["fail"], res.Item.File.Name)))
		if r.verbose && res.Err != nil {
			fmt.Fprintln(r.w, debugStyle.Render(fmt.Sprintf("    %v", res.Err)))
		}
	}
}

// Progress redraws a single in-place line for the active download.
func (r *Reporter) Progress(item fetch.Item, downloaded, total int64) {
	if !r.interactive {
		return
	}
	now := time.Now()
	if now.Sub(r.lastDraw) < 100*time.Millisecond && downloaded < total {
		return
	}
	r.lastDraw = now
	if total > 0 {
		width := min(40, getTerminalWidth()-40)
		fmt.Fprintf(r.w, "\r  %s %s%s", item.File.Name, PrintProgressBar(downloaded, total, width), FormatBytes(uint64(downloaded)))
	} else {
		fmt.Fprintf(r.w, "\r  %s %s", item.File.Name, FormatBytes(uint64(downloaded)))
	}
	r.progressShown = true
}

func (r *Reporter) clearProgress() {
	if !r.progressShown {
		return
	}
	fmt.Fprint(r.w, "\r\033[K")
	r.progressShown = false
}

// Summary prints the tally for one model plus any collected errors.
func (r *Reporter) Summary(results []fetch.Result) {
	r.clearProgress()
	t := Tabulate(results)
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Downloaded %d of %d", t.Succeeded, len(results))))
	if t.Failed > 0 {
		fmt.Fprintln(r.w, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", t.Failed, len(results))))
	}
	if t.Skipped > 0 {
		fmt.Fprintln(r.w, strings.Repeat(" ", 2)+warningStyle.Render(fmt.Sprintf("Skipped %d of %d", t.Skipped, len(results))))
	}
	r.displayErrors(results)
	fmt.Fprintln(r.w)
}

func (r *Reporter) displayErrors(results []fetch.Result) {
	var failed []fetch.Result
	for _, res := range results {
		if res.Outcome == fetch.OutcomeFailed {
			failed = append(failed, res)
		}
	}
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, res := range failed {
		fmt.Fprintf(r.w, "%s%s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			errorStyle.Render(res.Item.File.Name))
		fmt.Fprintf(r.w, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", res.Err)))
	}
}

// JobError reports a model that failed before any files could be planned.
func (r *Reporter) JobError(modelURL string, err error) {
	r.clearProgress()
	fmt.Fprintln(r.w, errorStyle.Render(fmt.Sprintf("%s %s", StyleSymbols["fail"], modelURL)))
	fmt.Fprintln(r.w, errorStyle.Render(fmt.Sprintf("  Error: %v", err)))
}
