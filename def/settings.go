package def

import (
	"regexp"
	"time"
)

/*
	PatchSpec says where the replacement copy of the target dependency
	should be fetched from while a job runs.  The zero value means
	patching is disabled and manifests are left untouched.
*/
type PatchSpec struct {
	// Git URL of the replacement source.
	Source string

	// Branch to pin; empty means the remote's default branch.
	Branch string
}

func (p PatchSpec) Defined() bool {
	return p.Source != ""
}

/*
	Settings is assembled exactly once by the CLI, then handed by pointer
	to the selector, the scheduler, and every worker.  No field changes
	after that: the whole run sees one consistent view of the config.
*/
type Settings struct {
	// Absolute path of the directory holding the repository checkouts.
	CacheRoot string

	// Tox environment to select; empty runs the default envlist.
	Env string

	// Number of worker goroutines draining the job queue.
	Workers int

	// Include filter matched against top-level cache entry names.
	// Compiled case-insensitive and anchored at the start of the name.
	Pattern *regexp.Regexp

	// Cap on the number of jobs after all filtering; zero means no cap.
	Sample int

	// Name of the dependency to patch out of manifests.
	Dep string

	// Replacement source for Dep; the zero value disables patching.
	Patch PatchSpec

	// Execution backend: "local", "lxd", or "lxd-per-job".
	Mode string

	// Name of the shared lxd instance (also the prefix for per-job ones).
	LxdName string

	// Image alias new lxd instances are created from.
	LxdImage string

	// Leave the lxd instance in place after the run instead of deleting it.
	KeepInstance bool

	// Remove each job's .tox directory before running.
	FreshTox bool

	// Run `git checkout -- .` in each job's checkout before running.
	DiscardChanges bool

	// Run `git pull --ff-only` in each job's checkout before running.
	Pull bool

	// Kill a single trial after this long; zero means no limit.
	Timeout time.Duration

	Verbose   bool
	Serialize bool

	Policy    Policy
	Overrides Overrides
}
