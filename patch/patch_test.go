package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacemonkeygo/errors"

	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/lib/testutil"
)

var boom = errors.NewClass("Boom")

func writeFile(path string, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		panic(err)
	}
}

func readFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return string(content)
}

const requirementsFixture = "# charm runtime deps\n" +
	"ops ==2.4.1\n" +
	"requests>=2.25 # http bits\n" +
	"git+https://github.com/canonical/some-lib@v1\n" +
	"\n" +
	"cryptography==41.0.3 \\\n" +
	"    --hash=sha256:deadbeef\n" +
	"-r requirements-nested.txt\n"

const requirementsPatched = "requests>=2.25\n" +
	"git+https://github.com/canonical/some-lib@v1\n" +
	"cryptography==41.0.3\n" +
	"\n" +
	"git+https://example/ops@main\n"

func Test(t *testing.T) {
	Convey("Given a checkout declaring deps in requirements files", t, testutil.WithTmpdir(func(c C) {
		location, _ := os.Getwd()
		writeFile("requirements.txt", requirementsFixture)
		writeFile("requirements-dev.txt", "ops\npytest\n")
		log := testutil.TestLogger(c)
		spec := def.PatchSpec{Source: "https://example/ops", Branch: "main"}

		Convey("The scope sees rewritten files and leaves originals behind", func() {
			var during, duringDev string
			WithOverride(location, "ops", spec, log, func() {
				during = readFile("requirements.txt")
				duringDev = readFile("requirements-dev.txt")
			})
			So(during, ShouldEqual, requirementsPatched)
			So(duringDev, ShouldEqual, "pytest\n\ngit+https://example/ops@main\n")
			So(readFile("requirements.txt"), ShouldEqual, requirementsFixture)
			So(readFile("requirements-dev.txt"), ShouldEqual, "ops\npytest\n")
		})

		Convey("Without a branch the appended reference has no pin", func() {
			var during string
			WithOverride(location, "ops", def.PatchSpec{Source: "https://example/ops"}, log, func() {
				during = readFile("requirements.txt")
			})
			So(during, ShouldEndWith, "\ngit+https://example/ops\n")
			So(during, ShouldNotContainSubstring, "@main")
		})

		Convey("Restoration happens even when the scope panics", func() {
			So(func() {
				WithOverride(location, "ops", spec, log, func() {
					panic(boom.New("pow"))
				})
			}, testutil.ShouldPanicWith, boom)
			So(readFile("requirements.txt"), ShouldEqual, requirementsFixture)
			So(readFile("requirements-dev.txt"), ShouldEqual, "ops\npytest\n")
		})
	}))

	Convey("Given a checkout declaring deps in pyproject.toml", t, testutil.WithTmpdir(func(c C) {
		location, _ := os.Getwd()
		pyproject := "name = \"sample\"\n" +
			"dependencies = [\"ops>=2.0\", \"ops-scenario\", \"requests\"]\n"
		lock := "locked-content-v1\n"
		writeFile("pyproject.toml", pyproject)
		writeFile("poetry.lock", lock)
		log := testutil.TestLogger(c)
		spec := def.PatchSpec{Source: "https://example/ops", Branch: "main"}

		Convey("The dependency table is filtered and the locator appended", func() {
			var during string
			WithOverride(location, "ops", spec, log, func() {
				during = readFile("pyproject.toml")
			})
			So(during, ShouldNotContainSubstring, "\"ops>=2.0\"")
			So(during, ShouldContainSubstring, "ops-scenario")
			So(during, ShouldContainSubstring, "requests")
			So(during, ShouldContainSubstring, `ops = { git = \"https://example/ops\", branch = \"main\" }`)
			So(readFile("pyproject.toml"), ShouldEqual, pyproject)
		})

		Convey("A lock file rewritten during the scope is put back", func() {
			WithOverride(location, "ops", spec, log, func() {
				writeFile("poetry.lock", "scribbled-by-tooling\n")
			})
			So(readFile("poetry.lock"), ShouldEqual, lock)
			So(readFile("pyproject.toml"), ShouldEqual, pyproject)
		})
	}))

	Convey("Given a checkout with no recognizable manifest", t, testutil.WithTmpdir(func(c C) {
		location, _ := os.Getwd()
		writeFile("README.md", "nothing to see\n")
		log := testutil.TestLogger(c)

		Convey("WithOverride refuses with UnsupportedManifest", func() {
			So(func() {
				WithOverride(location, "ops", def.PatchSpec{Source: "https://example/ops"}, log, func() {})
			}, testutil.ShouldPanicWith, UnsupportedManifest)
		})
	}))
}
