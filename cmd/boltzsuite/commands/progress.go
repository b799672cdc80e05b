// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// consoleProgress renders a spinner per case and a one-line verdict when it
// finishes. In verbose mode the spinner is dropped so it cannot interleave
// with log output.
type consoleProgress struct {
	out     io.Writer
	verbose bool
	spin    *spinner.Spinner
}

func newConsoleProgress(out io.Writer, verbose bool) *consoleProgress {
	return &consoleProgress{out: out, verbose: verbose}
}

func (p *consoleProgress) CaseStarted(name string, ep suite.Endpoint, iface suite.Interface) {
	if p.verbose {
		fmt.Fprintf(p.out, "running %s [%s %s]\n", name, ep, iface)
		return
	}
	p.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	p.spin.Suffix = fmt.Sprintf(" %s [%s %s]", name, ep, iface)
	p.spin.Start()
}

func (p *consoleProgress) CaseFinished(rec *suite.Result) {
	if p.spin != nil {
		p.spin.Stop()
		p.spin = nil
	}

	var mark string
	switch rec.Status {
	case suite.StatusSuccess:
		mark = text.FgGreen.Sprint("ok  ")
	case suite.StatusSkipped:
		mark = text.FgYellow.Sprint("skip")
	default:
		mark = text.FgRed.Sprint("fail")
	}
	fmt.Fprintf(p.out, "%s %s [%s %s] %.1fs\n", mark, rec.Name, rec.Endpoint, rec.Interface, rec.Seconds())
}
