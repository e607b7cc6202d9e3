package patch

import (
	"path/filepath"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/def"
)

/*
	A manifest format knows how to rewrite a checkout's dependency
	declarations and how to put the original bytes back afterward.

	Detection captures the original content of every file the format
	owns, so restore works no matter how far patching got.
*/
type format interface {
	// Rewrites the detected manifest files on disk.  MAY PANIC.
	patch()

	// Writes every captured file's original bytes back.  MAY PANIC.
	restore()
}

// One manifest file as it was before we touched it.
type capturedFile struct {
	path     string
	original []byte
}

func detect(location string, dep string, spec def.PatchSpec, log log15.Logger) format {
	if f := detectRequirements(location, dep, spec, log); f != nil {
		return f
	}
	if f := detectPyproject(location, dep, spec, log); f != nil {
		return f
	}
	return nil
}

/*
	WithOverride rewrites the checkout at `location` so that `dep` is
	drawn from `spec` instead of its declared source, runs `fn`, and
	restores the original bytes of every touched file on the way out:
	on normal return, on fn panicking, and on the patch itself failing
	partway.

	Concurrent calls against the same location serialize on an internal
	per-path lock, so two workers accidentally aimed at one checkout
	cannot interleave each other's patch and restore.

	Panics UnsupportedManifest if no known manifest format is present.
*/
func WithOverride(location string, dep string, spec def.PatchSpec, log log15.Logger, fn func()) {
	lk := pathLock(location)
	lk.Lock()
	defer lk.Unlock()

	f := detect(location, dep, spec, log)
	if f == nil {
		panic(UnsupportedManifest.New("only know how to patch requirements.txt and pyproject.toml (in %s)", location))
	}
	try.Do(func() {
		f.patch()
		fn()
	}).Finally(func() {
		f.restore()
	}).Done()
}

var (
	locksMu sync.Mutex
	locks   = map[string]*sync.Mutex{}
)

func pathLock(location string) *sync.Mutex {
	abs, err := filepath.Abs(location)
	if err != nil {
		abs = location
	}
	locksMu.Lock()
	defer locksMu.Unlock()
	lk, ok := locks[abs]
	if !ok {
		lk = &sync.Mutex{}
		locks[abs] = lk
	}
	return lk
}
