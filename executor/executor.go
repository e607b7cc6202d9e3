package executor

import (
	"github.com/inconshreveable/log15"

	"go.polydawn.net/muster/def"
)

/*
	Executors run one command against one working directory and report
	how it went.  Muster only ever asks for the one fixed trial command,
	but the interface does not care.

	WHERE the command lands (the host, one shared compute instance, or
	a fresh instance per job) is exactly the difference between
	implementations.
*/
type Executor interface {

	/*
		Prepare the executor with everything it needs to run jobs.

		For remote implementations this is the expensive part: instance
		creation, boot, and file sync all happen here.  MAY PANIC; a
		panic out of Configure is fatal to the whole run.
	*/
	Configure(cfg *def.Settings, log log15.Logger)

	/*
		Run argv with the given absolute working directory and hand
		back the exit code and both captured output streams.

		A command that could not be spawned at all reports exit code -1
		with the launch error as stderr; conditions that indicate the
		executor itself is broken panic instead (see the error classes
		in this package).
	*/
	Run(argv []string, dir string) (code int, stdout string, stderr string)

	/*
		Release whatever Configure acquired.  Called exactly once,
		after the job queue has drained.
	*/
	Teardown()
}

/*
	ToxArgv builds the trial command: plain `tox`, or `tox -e <env>`
	when a specific environment is requested.
*/
func ToxArgv(env string) []string {
	argv := []string{"tox"}
	if env != "" {
		argv = append(argv, "-e", env)
	}
	return argv
}
