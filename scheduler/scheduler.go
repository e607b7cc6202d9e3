package scheduler

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/polydawn/gosh"
	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/executor"
	"go.polydawn.net/muster/patch"
	"go.polydawn.net/muster/report"
	"go.polydawn.net/muster/selector"
)

/*
	Run drains the job list through a fixed pool of workers and
	collects the results.

	The queue is loaded completely before the first worker starts, so
	closing it doubles as the shutdown signal: a worker finding the
	channel drained is done, and a job already picked up always runs to
	its end.  Run returns when every worker has retired.
*/
func Run(cfg *def.Settings, jobs []def.Job, x executor.Executor, results *report.Collector, log log15.Logger) {
	queue := make(chan def.Job, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	var wg sync.WaitGroup
	for n := 1; n <= cfg.Workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			w := &worker{cfg: cfg, x: x, results: results, log: log.New("worker", n)}
			for job := range queue {
				w.dispatch(job)
			}
		}(n)
	}
	wg.Wait()
}

// reasons given when the policy says a repo is not worth dispatching
var skipReasons = map[string]string{
	"expensive":    "too expensive",
	"manual":       "requires manual intervention",
	"requirements": "cannot install dependencies",
	"not_ops":      "does not use the target dependency",
	"misc":         "in misc ignore list",
}

type worker struct {
	cfg     *def.Settings
	x       executor.Executor
	results *report.Collector
	log     log15.Logger
}

/*
	dispatch takes one queued job through classification, expansion,
	and execution.  Failures inside any one (sub-)job are confined to
	it: logged, counted as dropped, and the worker moves on.
*/
func (w *worker) dispatch(job def.Job) {
	if reason, ok := w.classify(job.Repo); ok {
		w.log.Info("skipping repo: "+reason, "repo", job.Repo)
		return
	}
	if w.cfg.Overrides.ForcedBundle(job.Repo) {
		var members []string
		if !w.attempt(job.Repo, func() {
			members = selector.Members(w.cfg.CacheRoot, job.Repo)
		}) {
			return
		}
		for _, member := range members {
			sub := def.Job{Repo: member, Env: job.Env}
			w.attempt(sub.Repo, func() { w.process(sub) })
		}
		return
	}
	w.attempt(job.Repo, func() { w.process(job) })
}

// classify turns the policy's verdict on a job path into a loggable reason.
func (w *worker) classify(repo string) (string, bool) {
	category, ok := w.cfg.Policy.CategorizeJob(repo)
	if !ok {
		return "", false
	}
	return skipReasons[category], true
}

// attempt is the per-job failure boundary; reports whether fn finished.
func (w *worker) attempt(repo string, fn func()) (finished bool) {
	try.Do(func() {
		fn()
		finished = true
	}).CatchAll(func(err error) {
		w.log.Error("job errored, dropping it", "job", repo, "error", err)
		w.results.NoteDropped()
	}).Done()
	return
}

func (w *worker) process(job def.Job) {
	if subdir, ok := w.cfg.Overrides.Subdir[job.Repo]; ok {
		job.Repo = path.Join(job.Repo, subdir)
	}
	dir := job.Dir(w.cfg.CacheRoot)
	w.prepare(dir, topLevel(job.Repo))
	run := func() { w.execute(job, dir) }
	if w.cfg.Patch.Defined() {
		patch.WithOverride(dir, w.cfg.Dep, w.cfg.Patch, w.log, run)
	} else {
		run()
	}
}

/*
	execute runs the trial and records the outcome.  Both output
	streams are captured into the result; stderr is additionally
	logged, since that is where tox narrates its troubles.
*/
func (w *worker) execute(job def.Job, dir string) {
	argv := executor.ToxArgv(job.Env)
	w.log.Info("running trial", "job", job.Repo, "argv", strings.Join(argv, " "))
	code, stdout, stderr := w.x.Run(argv, dir)
	if stderr != "" {
		w.log.Error("trial stderr", "job", job.Repo, "stderr", strings.TrimSpace(stderr))
	}
	if code == 0 {
		w.log.Info("trial passed", "job", job.Repo)
	} else {
		w.log.Warn("trial did not pass", "job", job.Repo, "exitcode", code)
	}
	w.results.Add(def.RunResult{
		Repo:     job.Repo,
		Passed:   code == 0,
		ExitCode: code,
		Stdout:   stdout,
		Stderr:   stderr,
	})
}

/*
	prepare applies the requested pre-run cleanup to the checkout.
	Steps that touch git state serialize per top-level repo, because
	bundle members share their container's .git and git locks it.
*/
func (w *worker) prepare(dir string, container string) {
	if !w.cfg.DiscardChanges && !w.cfg.Pull && !w.cfg.FreshTox {
		return
	}
	mutex := containerLock(container)
	mutex.Lock()
	defer mutex.Unlock()
	if w.cfg.DiscardChanges {
		w.runGit(dir, "checkout", "--", ".")
	}
	if w.cfg.Pull {
		w.runGit(dir, "pull", "--ff-only")
	}
	if w.cfg.FreshTox {
		if err := os.RemoveAll(filepath.Join(dir, ".tox")); err != nil {
			panic(errors.IOError.Wrap(err))
		}
	}
}

func (w *worker) runGit(dir string, args ...string) {
	buf := &bytes.Buffer{}
	bakeArgs := make([]interface{}, 0, len(args)+1)
	for _, arg := range args {
		bakeArgs = append(bakeArgs, arg)
	}
	bakeArgs = append(bakeArgs, gosh.Opts{Cwd: dir, OkExit: gosh.AnyExit, Out: buf, Err: buf})
	code := git.Bake(bakeArgs...).Run().GetExitCode()
	if code != 0 {
		panic(PrepError.New("git %s in %q failed: %s", args[0], dir, strings.TrimSpace(buf.String())))
	}
	w.log.Debug("prep step done", "dir", dir, "step", "git "+args[0])
}

var locksMutex sync.Mutex
var containerLocks = map[string]*sync.Mutex{}

func containerLock(container string) *sync.Mutex {
	locksMutex.Lock()
	defer locksMutex.Unlock()
	mutex := containerLocks[container]
	if mutex == nil {
		mutex = &sync.Mutex{}
		containerLocks[container] = mutex
	}
	return mutex
}

func topLevel(repo string) string {
	if i := strings.IndexByte(repo, '/'); i >= 0 {
		return repo[:i]
	}
	return repo
}
