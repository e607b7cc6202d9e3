package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/inconshreveable/log15"
	"github.com/polydawn/gosh"
	"github.com/spacemonkeygo/errors"

	"go.polydawn.net/muster/def"
)

/*
	The structured format: a `pyproject.toml` with a top-level
	dependencies array, optionally accompanied by a `poetry.lock` that
	has to be regenerated when the array changes.
*/
type pyprojectFormat struct {
	dep       string
	spec      def.PatchSpec
	log       log15.Logger
	location  string
	pyproject capturedFile
	lock      *capturedFile // nil when the checkout has no lock file
}

func detectPyproject(location string, dep string, spec def.PatchSpec, log log15.Logger) *pyprojectFormat {
	path := filepath.Join(location, "pyproject.toml")
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f := &pyprojectFormat{
		dep:       dep,
		spec:      spec,
		log:       log,
		location:  location,
		pyproject: capturedFile{path: path, original: content},
	}
	lockPath := filepath.Join(location, "poetry.lock")
	if lockContent, err := os.ReadFile(lockPath); err == nil {
		f.lock = &capturedFile{path: lockPath, original: lockContent}
	}
	return f
}

func (f *pyprojectFormat) patch() {
	var document map[string]interface{}
	if err := toml.Unmarshal(f.pyproject.original, &document); err != nil {
		panic(Error.New("cannot parse %s: %s", f.pyproject.path, err))
	}

	deps, _ := document["dependencies"].([]interface{})
	kept := make([]interface{}, 0, len(deps)+1)
	for _, entry := range deps {
		req, isString := entry.(string)
		if isString {
			name, ok := requirementName(strings.TrimSpace(req))
			if ok && normalizeName(name) == normalizeName(f.dep) {
				continue
			}
		}
		kept = append(kept, entry)
	}
	kept = append(kept, f.locator())
	document["dependencies"] = kept

	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(document); err != nil {
		panic(Error.New("cannot re-encode %s: %s", f.pyproject.path, err))
	}
	if err := os.WriteFile(f.pyproject.path, buf.Bytes(), 0644); err != nil {
		panic(errors.IOError.Wrap(err))
	}

	// Some projects refuse to install until the lock file agrees with
	// the manifest again.
	if usesPoetry(document) {
		f.regenerateLock()
	}
}

func (f *pyprojectFormat) restore() {
	if err := os.WriteFile(f.pyproject.path, f.pyproject.original, 0644); err != nil {
		panic(errors.IOError.Wrap(err))
	}
	if f.lock != nil {
		if err := os.WriteFile(f.lock.path, f.lock.original, 0644); err != nil {
			panic(errors.IOError.Wrap(err))
		}
	}
}

func (f *pyprojectFormat) locator() string {
	if f.spec.Branch != "" {
		return fmt.Sprintf("%s = { git = %q, branch = %q }", f.dep, f.spec.Source, f.spec.Branch)
	}
	return fmt.Sprintf("%s = { git = %q }", f.dep, f.spec.Source)
}

func usesPoetry(document map[string]interface{}) bool {
	tool, ok := document["tool"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = tool["poetry"]
	return ok
}

var poetry gosh.Command = gosh.Gosh("poetry", gosh.NullIO)

func (f *pyprojectFormat) regenerateLock() {
	buf := &bytes.Buffer{}
	code := poetry.Bake(
		"lock",
		gosh.Opts{Cwd: f.location, OkExit: gosh.AnyExit, Out: buf, Err: buf},
	).Run().GetExitCode()
	if code != 0 {
		// The trial itself will surface whatever is wrong; a stale lock
		// is not our failure to report.
		f.log.Warn("poetry lock did not complete cleanly",
			"location", f.location, "exit", code, "output", strings.TrimSpace(buf.String()))
	}
}
