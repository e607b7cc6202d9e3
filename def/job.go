package def

import (
	"path/filepath"
)

/*
	Job names a single repository checkout that should have the trial
	command run in it.

	The `Repo` field is the path of the checkout relative to the cache
	root, always '/'-separated.  It is the job's identity everywhere:
	in logs, in ignore policy matching, and in the final report.
*/
type Job struct {
	Repo string `json:"repo"`

	// Env names a single tox environment to select with '-e'.
	// Empty means tox's default envlist.
	Env string `json:"env,omitempty"`
}

/*
	Dir resolves the job's working directory under the given cache root.
*/
func (j Job) Dir(cacheRoot string) string {
	return filepath.Join(cacheRoot, filepath.FromSlash(j.Repo))
}

/*
	RunResult holds everything we keep from one completed trial.

	Once a result has been handed to the collector it is immutable;
	the reporter sorts and counts results but never rewrites them.
*/
type RunResult struct {
	Repo string `json:"repo"`

	Passed bool `json:"passed"`

	// ExitCode is the trial command's exit status.
	// -1 means the command could not be spawned at all.
	ExitCode int `json:"exitCode"`

	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}
