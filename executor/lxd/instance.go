package lxd

import (
	"bytes"
	"os/exec"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/polydawn/gosh"
	"github.com/spacemonkeygo/errors/try"
	"github.com/ugorji/go/codec"

	"go.polydawn.net/muster/executor"
)

/*
	Instance wraps one named lxd instance with the handful of lifecycle
	moves muster needs.  All operations shell out to the lxc client; any
	lifecycle failure panics `RemoteInstanceError`.
*/
type Instance struct {
	Name string
	log  log15.Logger
}

// the subset of `lxc list --format json` output we care about
type instanceInfo struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

/*
	Connect verifies the lxc client is present and the daemon answers,
	and logs the version banner for the debugging record.

	MAY PANIC with `executor.ConfigError` if the client binary is
	missing, or `RemoteInstanceError` if the daemon is unreachable.
*/
func Connect(log log15.Logger) {
	buf := &bytes.Buffer{}
	var code int
	try.Do(func() {
		code = lxc.Bake("version", gosh.Opts{OkExit: gosh.AnyExit, Out: buf, Err: buf}).Run().GetExitCode()
	}).CatchAll(func(err error) {
		switch err.(type) {
		case gosh.NoSuchCommandError:
			panic(executor.ConfigError.New("cannot run in lxd mode: lxc client binary is missing"))
		default:
			panic(executor.UnknownError.Wrap(err))
		}
	}).Done()
	if code != 0 {
		panic(RemoteInstanceError.New("lxc client cannot reach a daemon: %s", strings.TrimSpace(buf.String())))
	}
	log.Debug("lxd client ready", "banner", strings.TrimSpace(buf.String()))
}

/*
	Ensure brings the instance to Running: created from the image alias
	if it does not exist yet, started if it was merely stopped.  An
	instance already running is left exactly as found.
*/
func (i Instance) Ensure(image string) {
	status, exists := i.status()
	if !exists {
		i.log.Info("creating lxd instance", "name", i.Name, "image", image)
		i.lifecycle("creating", "init", image, i.Name)
		status = "Stopped"
	}
	if status != "Running" {
		i.log.Info("starting lxd instance", "name", i.Name)
		i.lifecycle("starting", "start", i.Name)
	}
}

/*
	Retire stops the instance if it is running and, unless asked to keep
	it around for inspection, deletes it.
*/
func (i Instance) Retire(keep bool) {
	if status, exists := i.status(); !exists {
		return
	} else if status == "Running" {
		i.log.Info("stopping lxd instance", "name", i.Name)
		i.lifecycle("stopping", "stop", i.Name)
	}
	if !keep {
		i.log.Info("deleting lxd instance", "name", i.Name)
		i.lifecycle("deleting", "delete", i.Name)
	}
}

/*
	Push copies one local file into the instance, creating any missing
	parent directories on the remote side.
*/
func (i Instance) Push(localPath string, remotePath string) {
	i.lifecycle("pushing file into", "file", "push", "--create-dirs", localPath, i.Name+remotePath)
}

func (i Instance) status() (string, bool) {
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	code := lxc.Bake("list", "--format", "json", gosh.Opts{OkExit: gosh.AnyExit, Out: outBuf, Err: errBuf}).Run().GetExitCode()
	if code != 0 {
		panic(RemoteInstanceError.New("cannot list lxd instances: %s", strings.TrimSpace(errBuf.String())))
	}
	var infos []instanceInfo
	if err := codec.NewDecoderBytes(outBuf.Bytes(), &codec.JsonHandle{}).Decode(&infos); err != nil {
		panic(RemoteInstanceError.New("cannot parse lxc list output: %s", err))
	}
	for _, info := range infos {
		if info.Name == i.Name {
			return info.Status, true
		}
	}
	return "", false
}

// lifecycle runs one state-changing invocation of the lxc client.
func (i Instance) lifecycle(what string, args ...string) {
	buf := &bytes.Buffer{}
	bakeArgs := make([]interface{}, 0, len(args)+1)
	for _, arg := range args {
		bakeArgs = append(bakeArgs, arg)
	}
	bakeArgs = append(bakeArgs, gosh.Opts{OkExit: gosh.AnyExit, Out: buf, Err: buf})
	code := lxc.Bake(bakeArgs...).Run().GetExitCode()
	if code != 0 {
		panic(RemoteInstanceError.New("%s lxd instance %q failed: %s", what, i.Name, strings.TrimSpace(buf.String())))
	}
}

/*
	Exec runs argv inside the instance with the given remote working
	directory, capturing both output streams.  The remote command's exit
	code is forwarded by the lxc client and returned as-is; a nonzero
	timeout reaps trials that hang.

	Unlike the lifecycle methods this does not panic when the command
	fails, because a failing command is a result, not a malfunction.
*/
func (i Instance) Exec(argv []string, remoteDir string, timeout time.Duration) (code int, stdout string, stderr string) {
	args := append([]string{"exec", i.Name, "--cwd", remoteDir, "--"}, argv...)
	var outBuf, errBuf bytes.Buffer
	cmd := exec.Command("lxc", args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	var proc gosh.Proc
	try.Do(func() {
		proc = gosh.ExecProcCmd(cmd)
	}).CatchAll(func(err error) {
		switch err.(type) {
		case gosh.ProcMonitorError:
			panic(executor.TaskExecError.Wrap(err))
		default:
			panic(executor.UnknownError.Wrap(err))
		}
	}).Done()

	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			i.log.Warn("trial exceeded timeout, killing it", "instance", i.Name, "timeout", timeout)
			cmd.Process.Kill()
		})
		defer timer.Stop()
	}

	return proc.GetExitCode(), outBuf.String(), errBuf.String()
}
