package selector

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/def"
)

const (
	// A checkout carrying this file is a container of member charms,
	// not a runnable project itself.
	bundleMarker = "bundle.yaml"

	// The directory inside a bundle that holds the member checkouts.
	bundleMembersDir = "charms"

	// A candidate must carry this file to become a job.
	runMarker = "tox.ini"
)

/*
	Scan walks the top level of the cache root and produces the job list
	for one run.

	Rules, in the order applied to each entry: hidden names (leading dot)
	and plain files are passed over silently; names failing the include
	pattern are logged and passed over; a directory carrying the bundle
	marker contributes each entry of its members directory as a separate
	job and is never a job itself; a directory named by the force_bundle
	override is passed through whole for the dispatch layer to expand;
	any other directory becomes a job only if it carries the run config
	marker.  A sample cap, if set, truncates the list after all of the
	above.

	The returned slice is rebuilt from the filesystem on every call;
	hold onto it if you need a stable view.
*/
func Scan(cfg *def.Settings, log log15.Logger) []def.Job {
	entries, err := os.ReadDir(cfg.CacheRoot)
	if err != nil {
		panic(def.ConfigError.New("cannot read cache root %q: %s", cfg.CacheRoot, err))
	}
	jobs := []def.Job{}
	for _, ent := range entries {
		name := ent.Name()
		if !ent.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !cfg.Pattern.MatchString(name) {
			log.Info("skipping repo: does not match specified pattern", "repo", name)
			continue
		}
		if IsBundle(cfg.CacheRoot, name) {
			try.Do(func() {
				for _, member := range Members(cfg.CacheRoot, name) {
					jobs = append(jobs, def.Job{Repo: member, Env: cfg.Env})
				}
			}).CatchAll(func(err error) {
				log.Error("cannot expand bundle, dropping it", "repo", name, "error", err)
			}).Done()
			continue
		}
		if cfg.Overrides.ForcedBundle(name) {
			// no marker to inspect; expansion happens at dispatch time
			jobs = append(jobs, def.Job{Repo: name, Env: cfg.Env})
			continue
		}
		if _, err := os.Stat(filepath.Join(cfg.CacheRoot, name, runMarker)); err != nil {
			continue
		}
		jobs = append(jobs, def.Job{Repo: name, Env: cfg.Env})
	}
	if cfg.Sample > 0 && len(jobs) > cfg.Sample {
		jobs = jobs[:cfg.Sample]
	}
	return jobs
}

/*
	IsBundle reports whether the repo carries the bundle marker file.
	(Repos laid out as bundles without the marker are caught by the
	force_bundle override at dispatch time, not here.)
*/
func IsBundle(cacheRoot string, repo string) bool {
	_, err := os.Stat(filepath.Join(cacheRoot, filepath.FromSlash(repo), bundleMarker))
	return err == nil
}

/*
	Members lists a bundle's member paths (relative to the cache root,
	'/'-separated), one per entry of its members directory.  Members are
	not checked for the run config marker; a bundle is trusted to know
	its own layout.  MAY PANIC if the members directory cannot be read.
*/
func Members(cacheRoot string, repo string) []string {
	membersPath := filepath.Join(cacheRoot, filepath.FromSlash(repo), bundleMembersDir)
	entries, err := os.ReadDir(membersPath)
	if err != nil {
		panic(errors.IOError.Wrap(err))
	}
	members := make([]string, 0, len(entries))
	for _, ent := range entries {
		members = append(members, path.Join(repo, bundleMembersDir, ent.Name()))
	}
	return members
}
