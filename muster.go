package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"go.polydawn.net/muster/cli"
	"go.polydawn.net/muster/def"
)

func main() {
	try.Do(func() {
		cli.Main(os.Args, os.Stderr, os.Stdout)
	}).Catch(cli.Error, func(err *errors.Error) {
		// Errors marked as valid user-facing issues get a nice
		// pretty-printed route out, and may include specified exit codes.
		if isDebugMode() {
			// in debug-mode, repanic all the way to death so that we get all of golang's built in log features.
			panic(err)
		} else {
			// print nicely.
			fmt.Fprintf(os.Stderr,
				"muster was unable to complete your request!\n"+
					"%s\n",
				err)
			code := cli.EXIT_USER
			if data := errors.GetData(err, cli.ExitCodeKey); data != nil {
				code = data.(cli.ExitCode)
			}
			os.Exit(int(code))
		}
	}).Catch(def.ConfigError, func(err *errors.Error) {
		// Startup config problems (unreadable cache, broken policy file)
		// are user-fixable; same pretty route out.
		if isDebugMode() {
			panic(err)
		} else {
			fmt.Fprintf(os.Stderr,
				"muster was unable to complete your request!\n"+
					"%s\n",
				err)
			os.Exit(int(cli.EXIT_USER))
		}
	}).CatchAll(func(err error) {
		// Errors that aren't marked as valid user-facing issues should be
		// logged in preparation for a bug report.
		if isDebugMode() {
			// in debug-mode, repanic all the way to death so that we get all of golang's built in log features.
			panic(err)
		} else {
			// save the error to a file.  we want to keep the stacks, but not scare away the user.
			logPath, saveErr := saveErrorReport(err)
			var saveMsg string
			if saveErr == nil {
				saveMsg = fmt.Sprintf("We've logged the full error to a file: %q.  Please include this in the report.", logPath)
			} else {
				saveMsg = fmt.Sprintf("Additionally, we were unable to save a full log of the problem (\"%s\").", saveErr)
			}
			fmt.Fprintf(os.Stderr,
				"muster encountered a serious issue and was unable to complete your request!\n"+
					"Please file an issue to help us fix it.\n"+
					saveMsg+"\n"+
					"\n"+
					"This is the short version of the problem:\n"+
					"%s\n",
				err)
			os.Exit(int(cli.EXIT_UNKNOWNPANIC))
		}
	})
}

func isDebugMode() bool {
	// if either "DEBUG" or "MUSTER_DEBUG" env vars are set, we're in debug mode.
	return len(os.Getenv("DEBUG")) != 0 || len(os.Getenv("MUSTER_DEBUG")) != 0
}

func saveErrorReport(caught error) (string, error) {
	logFile, err := os.CreateTemp(os.TempDir(), "muster-error-report-")
	if err != nil {
		return "", err
	}
	defer logFile.Close()
	fmt.Fprintf(logFile, "muster error report\n")
	fmt.Fprintf(logFile, "===================\n")
	fmt.Fprintf(logFile, "Date: %s\n", time.Now())
	fmt.Fprintf(logFile, "\n")
	fmt.Fprintf(logFile, "Full error:\n")
	fmt.Fprintf(logFile, "-----------\n")
	fmt.Fprintf(logFile, "%s\n", caught)
	fmt.Fprintf(logFile, "\n")
	return logFile.Name(), nil
}
