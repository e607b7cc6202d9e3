package patch

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors"

	"go.polydawn.net/muster/def"
)

/*
	The plain-text format: `requirements.txt` plus any per-environment
	`requirements-*.txt` siblings.  Annoyingly, the siblings regularly
	redeclare the dependency we are replacing, so every one of them is
	rewritten the same way.
*/
type requirementsFormat struct {
	dep   string
	spec  def.PatchSpec
	log   log15.Logger
	files []capturedFile
}

func detectRequirements(location string, dep string, spec def.PatchSpec, log log15.Logger) *requirementsFormat {
	main := filepath.Join(location, "requirements.txt")
	if _, err := os.Stat(main); err != nil {
		return nil
	}
	siblings, err := filepath.Glob(filepath.Join(location, "requirements-*.txt"))
	if err != nil {
		panic(errors.ProgrammerError.Wrap(err))
	}
	f := &requirementsFormat{dep: dep, spec: spec, log: log}
	for _, path := range append([]string{main}, siblings...) {
		content, err := os.ReadFile(path)
		if err != nil {
			panic(errors.IOError.Wrap(err))
		}
		f.files = append(f.files, capturedFile{path: path, original: content})
	}
	return f
}

func (f *requirementsFormat) patch() {
	for _, file := range f.files {
		rewritten := rewriteRequirements(file.original, f.dep, f.spec, f.log, file.path)
		if err := os.WriteFile(file.path, rewritten, 0644); err != nil {
			panic(errors.IOError.Wrap(err))
		}
	}
}

func (f *requirementsFormat) restore() {
	for _, file := range f.files {
		if err := os.WriteFile(file.path, file.original, 0644); err != nil {
			panic(errors.IOError.Wrap(err))
		}
	}
}

/*
	rewriteRequirements filters one plain-text dependency list.

	Per line: the comment suffix and any trailing continuation marker are
	stripped before consideration; blank and `--hash` lines are dropped;
	direct `git+` references are kept untouched (we assume a fork keeps
	the upstream name, so second-guessing them does more harm than good);
	lines declaring the target dep are dropped; anything unparseable is
	logged and dropped.  One reference to the replacement source is
	appended at the end, with an `@branch` pin only when a branch was
	asked for.
*/
func rewriteRequirements(original []byte, dep string, spec def.PatchSpec, log log15.Logger, path string) []byte {
	kept := []string{}
	for _, rawLine := range strings.Split(string(original), "\n") {
		line := rawLine
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimSuffix(line, "\\"))
		if line == "" || strings.HasPrefix(line, "--hash") {
			continue
		}
		if strings.HasPrefix(line, "git+") {
			log.Debug("not considering direct reference in requirements patching", "line", line, "file", path)
			kept = append(kept, line)
			continue
		}
		name, ok := requirementName(line)
		if !ok {
			log.Error("cannot understand requirement", "line", line, "file", path)
			continue
		}
		if normalizeName(name) == normalizeName(dep) {
			continue
		}
		kept = append(kept, line)
	}
	var out strings.Builder
	out.WriteString(strings.Join(kept, "\n"))
	out.WriteString("\n\ngit+")
	out.WriteString(spec.Source)
	if spec.Branch != "" {
		out.WriteString("@")
		out.WriteString(spec.Branch)
	}
	out.WriteString("\n")
	return []byte(out.String())
}

var (
	requirementNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	nameSeparators         = regexp.MustCompile(`[-_.]+`)
)

/*
	requirementName pulls the declared package name off the front of a
	requirement line.  ok=false means the line does not start with a
	legal package name (editable installs, nested `-r` includes, and
	other pip flags all land here).
*/
func requirementName(line string) (name string, ok bool) {
	name = requirementNamePattern.FindString(line)
	if name == "" {
		return "", false
	}
	rest := line[len(name):]
	if rest != "" && !strings.ContainsRune(" \t[(<>=!~;@,", rune(rest[0])) {
		return "", false
	}
	return name, true
}

// Case and separator folding per the python packaging name rules, so
// "Ops", "ops" and "OPS" all name the same distribution.
func normalizeName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}
