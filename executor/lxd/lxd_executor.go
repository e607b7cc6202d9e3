package lxd

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/executor"
)

var _ executor.Executor = &Executor{}
var _ executor.Executor = &PerJobExecutor{}

// where the orchestrator's own workspace lands inside an instance
const remoteWorkspace = "/root/muster"

/*
	Executor runs every trial inside one shared lxd instance.

	Configure is the heavy step: it boots (or adopts) the instance and
	mirrors the workspace and repo cache into it; after that each Run is
	one `lxc exec`.  Teardown stops the instance and deletes it, unless
	the run asked to keep it around.
*/
type Executor struct {
	cfg         *def.Settings
	log         log15.Logger
	inst        Instance
	remoteCache string
}

func (e *Executor) Configure(cfg *def.Settings, log log15.Logger) {
	e.cfg = cfg
	e.log = log
	Connect(log)
	e.inst = Instance{Name: cfg.LxdName, log: log}
	e.inst.Ensure(cfg.LxdImage)
	e.remoteCache = provision(e.inst, cfg, log)
}

func (e *Executor) Run(argv []string, dir string) (int, string, string) {
	return e.inst.Exec(argv, path.Join(e.remoteCache, relativeToCache(e.cfg, dir)), e.cfg.Timeout)
}

func (e *Executor) Teardown() {
	e.inst.Retire(e.cfg.KeepInstance)
}

/*
	PerJobExecutor gives every job a freshly-named instance of its own
	and retires it again the moment the job finishes, trading setup time
	for full isolation between trials.
*/
type PerJobExecutor struct {
	cfg *def.Settings
	log log15.Logger
}

func (e *PerJobExecutor) Configure(cfg *def.Settings, log log15.Logger) {
	e.cfg = cfg
	e.log = log
	Connect(log)
}

func (e *PerJobExecutor) Run(argv []string, dir string) (code int, stdout string, stderr string) {
	rel := relativeToCache(e.cfg, dir)
	inst := Instance{Name: instanceName(e.cfg.LxdName, rel), log: e.log}
	inst.Ensure(e.cfg.LxdImage)
	try.Do(func() {
		remoteCache := provision(inst, e.cfg, e.log)
		code, stdout, stderr = inst.Exec(argv, path.Join(remoteCache, rel), e.cfg.Timeout)
	}).Finally(func() {
		inst.Retire(e.cfg.KeepInstance)
	}).Done()
	return
}

func (e *PerJobExecutor) Teardown() {}

/*
	provision mirrors the orchestrator's workspace and the repo cache
	into the instance, returning the remote path of the cache root.
	When the cache lives inside the workspace (the default layout), the
	one sync covers both.
*/
func provision(inst Instance, cfg *def.Settings, log log15.Logger) string {
	workspace, err := os.Getwd()
	if err != nil {
		panic(errors.IOError.Wrap(err))
	}
	log.Info("copying workspace into the instance", "instance", inst.Name)
	syncTree(inst, workspace, remoteWorkspace, log)
	if rel, err := filepath.Rel(workspace, cfg.CacheRoot); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
		return path.Join(remoteWorkspace, filepath.ToSlash(rel))
	}
	log.Info("copying repo cache into the instance", "instance", inst.Name)
	syncTree(inst, cfg.CacheRoot, remoteWorkspace+"/.cache", log)
	return remoteWorkspace + "/.cache"
}

/*
	relativeToCache maps a host job directory to its '/'-separated path
	under the cache root.  MAY PANIC with `executor.ConfigError` if the
	directory escapes the cache, since then there is no honest remote
	location for it.
*/
func relativeToCache(cfg *def.Settings, dir string) string {
	rel, err := filepath.Rel(cfg.CacheRoot, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		panic(executor.ConfigError.New("job directory %q is outside the repo cache %q", dir, cfg.CacheRoot))
	}
	return filepath.ToSlash(rel)
}

/*
	instanceName derives an instance name that lxd will accept: ascii
	letters, digits and hyphens, at most 63 characters.  The base name
	prefix keeps parallel runs out of each other's way.
*/
func instanceName(base string, jobPath string) string {
	slug := nonNameChars.ReplaceAllString(strings.ToLower(jobPath), "-")
	name := strings.TrimRight(base+"-"+strings.Trim(slug, "-"), "-")
	if len(name) > 63 {
		name = strings.TrimRight(name[:63], "-")
	}
	return name
}

var nonNameChars = regexp.MustCompile(`[^a-z0-9]+`)
