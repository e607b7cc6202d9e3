package local

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/lib/testutil"
)

func Test(t *testing.T) {
	Convey("Given a local executor", t, testutil.WithTmpdir(func(c C) {
		dir, _ := os.Getwd()
		x := &Executor{}
		x.Configure(&def.Settings{}, testutil.TestLogger(c))

		Convey("A passing command reports exit zero and its stdout", func() {
			code, stdout, stderr := x.Run([]string{"sh", "-c", "echo hello"}, dir)
			So(code, ShouldEqual, 0)
			So(stdout, ShouldEqual, "hello\n")
			So(stderr, ShouldEqual, "")
		})

		Convey("A failing command reports its exit code and stderr", func() {
			code, _, stderr := x.Run([]string{"sh", "-c", "echo bad >&2; exit 14"}, dir)
			So(code, ShouldEqual, 14)
			So(stderr, ShouldEqual, "bad\n")
		})

		Convey("A command that cannot spawn reports -1 instead of panicking", func() {
			code, _, stderr := x.Run([]string{"muster-definitely-not-a-command"}, dir)
			So(code, ShouldEqual, -1)
			So(stderr, ShouldNotBeBlank)
		})

		Convey("A missing working directory is a spawn failure too", func() {
			code, _, stderr := x.Run([]string{"sh", "-c", "true"}, dir+"/nonesuch")
			So(code, ShouldEqual, -1)
			So(stderr, ShouldNotBeBlank)
		})

		Convey("A configured timeout reaps a stuck trial", func() {
			x.Configure(&def.Settings{Timeout: 200 * time.Millisecond}, testutil.TestLogger(c))
			started := time.Now()
			code, _, _ := x.Run([]string{"sh", "-c", "sleep 30"}, dir)
			So(code, ShouldNotEqual, 0)
			So(time.Since(started), ShouldBeLessThan, 10*time.Second)
		})
	}))
}
