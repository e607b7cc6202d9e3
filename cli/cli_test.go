package cli

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/lib/testutil"
)

var (
	// os flag parsing mandates the executable name
	baseArgs = []string{"muster"}
)

func Test(t *testing.T) {
	Convey("It should not crash without args", t, func() {
		Main(baseArgs, ioutil.Discard, ioutil.Discard)
	})

	Convey("Bad args should be loud about it", t, func() {
		So(func() {
			Main(append(baseArgs, "run", "--mode", "hovercraft"), ioutil.Discard, ioutil.Discard)
		}, testutil.ShouldPanicWith, Error)
		So(func() {
			Main(append(baseArgs, "run", "--repo", "("), ioutil.Discard, ioutil.Discard)
		}, testutil.ShouldPanicWith, Error)
		So(func() {
			Main(append(baseArgs, "--log-level", "loud", "run"), ioutil.Discard, ioutil.Discard)
		}, testutil.ShouldPanicWith, Error)
	})

	Convey("Given an empty cache", t, testutil.WithTmpdir(func(c C) {
		So(os.Mkdir("cache", 0755), ShouldBeNil)

		Convey("A run over nothing still reports honestly", func() {
			journal := &bytes.Buffer{}
			output := &bytes.Buffer{}
			Main(append(baseArgs, "run", "--cache", "cache"), journal, output)
			So(output.String(), ShouldEqual, "0 out of 0 (0%) runs passed.\n")
		})

		Convey("Serialize mode keeps stdout parsable", func() {
			journal := &bytes.Buffer{}
			output := &bytes.Buffer{}
			Main(append(baseArgs, "run", "--cache", "cache", "--serialize"), journal, output)
			So(output.String(), ShouldEqual, "[]\n")
			So(journal.String(), ShouldContainSubstring, "0 out of 0")
		})

		Convey("An explicitly named policy file has to exist", func() {
			So(func() {
				Main(append(baseArgs, "run", "--cache", "cache", "--policy", "nowhere.toml"), ioutil.Discard, ioutil.Discard)
			}, testutil.ShouldPanicWith, def.ConfigError)
		})

		Convey("A policy file steers the run", func() {
			So(os.MkdirAll("cache/pricey-operators", 0755), ShouldBeNil)
			So(ioutil.WriteFile("cache/pricey-operators/tox.ini", []byte("[tox]\n"), 0644), ShouldBeNil)
			So(ioutil.WriteFile("muster.toml", []byte("[ignore]\nexpensive = [\"pricey-operators\"]\n"), 0644), ShouldBeNil)
			journal := &bytes.Buffer{}
			output := &bytes.Buffer{}
			Main(append(baseArgs, "run", "--cache", "cache"), journal, output)
			So(output.String(), ShouldEqual, "0 out of 0 (0%) runs passed.\n")
			So(journal.String(), ShouldContainSubstring, "too expensive")
		})

		Convey("Scan lists the fleet without running anything", func() {
			So(os.MkdirAll("cache/alpha-operator", 0755), ShouldBeNil)
			So(ioutil.WriteFile("cache/alpha-operator/tox.ini", []byte("[tox]\n"), 0644), ShouldBeNil)
			So(os.MkdirAll("cache/pricey-operators", 0755), ShouldBeNil)
			So(ioutil.WriteFile("cache/pricey-operators/tox.ini", []byte("[tox]\n"), 0644), ShouldBeNil)
			So(ioutil.WriteFile("muster.toml", []byte("[ignore]\nexpensive = [\"pricey-operators\"]\n"), 0644), ShouldBeNil)
			journal := &bytes.Buffer{}
			output := &bytes.Buffer{}
			Main(append(baseArgs, "scan", "--cache", "cache"), journal, output)
			So(output.String(), ShouldEqual, "run   alpha-operator\nskip  pricey-operators  (expensive)\n")
		})

		Convey("Scan serialize mode emits the job list as JSON", func() {
			So(os.MkdirAll("cache/alpha-operator", 0755), ShouldBeNil)
			So(ioutil.WriteFile("cache/alpha-operator/tox.ini", []byte("[tox]\n"), 0644), ShouldBeNil)
			journal := &bytes.Buffer{}
			output := &bytes.Buffer{}
			Main(append(baseArgs, "scan", "--cache", "cache", "--serialize", "-e", "unit"), journal, output)
			So(output.String(), ShouldStartWith, "[")
			So(output.String(), ShouldContainSubstring, `"repo"`)
			So(output.String(), ShouldContainSubstring, "alpha-operator")
			So(output.String(), ShouldContainSubstring, "unit")
		})
	}))
}
