package local

import (
	"bytes"
	"os/exec"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/polydawn/gosh"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/executor"
)

// interface assertion
var _ executor.Executor = &Executor{}

/*
	Runs trials as plain child processes on this host.  Assumes the
	trial command is installed and on PATH; if it is not, every job will
	come back as failed with exit -1, which is the honest answer.
*/
type Executor struct {
	timeout time.Duration
	log     log15.Logger
}

func (e *Executor) Configure(cfg *def.Settings, log log15.Logger) {
	e.timeout = cfg.Timeout
	e.log = log
}

func (e *Executor) Teardown() {}

func (e *Executor) Run(argv []string, dir string) (code int, stdout string, stderr string) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	// own process group, so a timeout can reap the whole tree
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// launch, transforming gosh's typed errors:
	// failure to spawn is the job's failure, not the run's.
	var proc gosh.Proc
	try.Do(func() {
		proc = gosh.ExecProcCmd(cmd)
	}).CatchAll(func(err error) {
		switch err.(type) {
		case gosh.NoSuchCommandError, gosh.NoSuchCwdError, gosh.NoArgumentsError:
			e.log.Error("trial could not be spawned", "dir", dir, "error", err)
			code = -1
			stderr = err.Error()
		case gosh.ProcMonitorError:
			panic(executor.TaskExecError.Wrap(err))
		default:
			panic(executor.UnknownError.Wrap(err))
		}
	}).Done()
	if proc == nil {
		return
	}

	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			e.log.Warn("trial exceeded timeout, killing it", "dir", dir, "timeout", e.timeout)
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		})
		defer timer.Stop()
	}

	code = proc.GetExitCode()
	return code, outBuf.String(), errBuf.String()
}
