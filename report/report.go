package report

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ugorji/go/codec"

	"go.polydawn.net/muster/def"
)

/*
	Collector accumulates results from concurrently running workers.

	All methods are safe for concurrent use; everything else in the run
	treats results as write-only until the scheduler has drained, so the
	mutex is uncontended in practice.
*/
type Collector struct {
	mutex   sync.Mutex
	results []def.RunResult
	dropped int
}

func (c *Collector) Add(result def.RunResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.results = append(c.results, result)
}

/*
	NoteDropped records a job that errored before producing a result.
	Dropped jobs are kept out of the pass-rate denominator, but the
	count is carried so a clean-looking summary cannot bury them.
*/
func (c *Collector) NoteDropped() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.dropped++
}

/*
	Results returns a copy of everything collected, sorted by repo path
	so output is stable regardless of scheduling order.
*/
func (c *Collector) Results() []def.RunResult {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	snapshot := make([]def.RunResult, len(c.results))
	copy(snapshot, c.results)
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Repo < snapshot[j].Repo
	})
	return snapshot
}

func (c *Collector) Dropped() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.dropped
}

/*
	Summarize prints the human-facing tally for a run.

	Verbose mode also names each failed run and admits to any jobs that
	errored out before producing a result.  An empty result set reports
	zero percent rather than dividing by it.
*/
func Summarize(w io.Writer, results []def.RunResult, dropped int, verbose bool) {
	passed := 0
	for _, result := range results {
		if result.Passed {
			passed++
		}
	}
	pct := 0.0
	if len(results) > 0 {
		pct = 100 * float64(passed) / float64(len(results))
	}
	fmt.Fprintf(w, "%d out of %d (%.0f%%) runs passed.\n", passed, len(results), pct)
	if !verbose {
		return
	}
	for _, result := range results {
		if !result.Passed {
			fmt.Fprintf(w, "failed: %s\n", result.Repo)
		}
	}
	if dropped > 0 {
		fmt.Fprintf(w, "%d jobs errored and were dropped; see the log for details.\n", dropped)
	}
}

/*
	Serialize writes the result set as one JSON document.
	This goes on stdout (everything else is stderr) and so should be
	parsable.
*/
func Serialize(w io.Writer, results []def.RunResult) error {
	if err := codec.NewEncoder(w, &codec.JsonHandle{Indent: -1}).Encode(results); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
