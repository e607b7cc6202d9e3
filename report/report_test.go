package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/muster/def"
)

func Test(t *testing.T) {
	Convey("Given a collector", t, func() {
		collector := &Collector{}

		Convey("Results come back sorted regardless of arrival order", func() {
			collector.Add(def.RunResult{Repo: "zebra-operator", Passed: true})
			collector.Add(def.RunResult{Repo: "alpha-operator", Passed: false, ExitCode: 1})
			collector.Add(def.RunResult{Repo: "fleet/charms/one", Passed: true})
			results := collector.Results()
			So(len(results), ShouldEqual, 3)
			So(results[0].Repo, ShouldEqual, "alpha-operator")
			So(results[1].Repo, ShouldEqual, "fleet/charms/one")
			So(results[2].Repo, ShouldEqual, "zebra-operator")
		})

		Convey("Concurrent adds all land", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 50; j++ {
						collector.Add(def.RunResult{Repo: "r", Passed: true})
						collector.NoteDropped()
					}
				}()
			}
			wg.Wait()
			So(len(collector.Results()), ShouldEqual, 400)
			So(collector.Dropped(), ShouldEqual, 400)
		})
	})

	Convey("Summarize speaks plainly", t, func() {
		results := []def.RunResult{
			{Repo: "alpha-operator", Passed: true},
			{Repo: "beta-operator", Passed: false, ExitCode: 1},
			{Repo: "gamma-operator", Passed: true},
			{Repo: "delta-operator", Passed: true},
		}

		Convey("The terse form is one line", func() {
			buf := &bytes.Buffer{}
			Summarize(buf, results, 0, false)
			So(buf.String(), ShouldEqual, "3 out of 4 (75%) runs passed.\n")
		})

		Convey("The verbose form names the failures and the dropped", func() {
			buf := &bytes.Buffer{}
			Summarize(buf, results, 2, true)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			So(lines[0], ShouldEqual, "3 out of 4 (75%) runs passed.")
			So(lines[1], ShouldEqual, "failed: beta-operator")
			So(lines[2], ShouldContainSubstring, "2 jobs errored")
		})

		Convey("Rounding is to whole percent", func() {
			buf := &bytes.Buffer{}
			Summarize(buf, []def.RunResult{
				{Repo: "a", Passed: true},
				{Repo: "b", Passed: true},
				{Repo: "c", Passed: false},
			}, 0, false)
			So(buf.String(), ShouldEqual, "2 out of 3 (67%) runs passed.\n")
		})

		Convey("An empty run does not divide by zero", func() {
			buf := &bytes.Buffer{}
			Summarize(buf, nil, 0, false)
			So(buf.String(), ShouldEqual, "0 out of 0 (0%) runs passed.\n")
		})
	})

	Convey("Serialize emits one parsable document", t, func() {
		buf := &bytes.Buffer{}
		err := Serialize(buf, []def.RunResult{
			{Repo: "alpha-operator", Passed: true, ExitCode: 0, Stdout: "ok\n"},
			{Repo: "beta-operator", Passed: false, ExitCode: 2, Stderr: "boom\n"},
		})
		So(err, ShouldBeNil)
		So(buf.String(), ShouldStartWith, "[")
		So(buf.String(), ShouldEndWith, "]\n")
		So(buf.String(), ShouldContainSubstring, `"repo"`)
		So(buf.String(), ShouldContainSubstring, `"alpha-operator"`)
		So(buf.String(), ShouldContainSubstring, `"exitCode"`)
	})
}
