package lxd

import (
	"github.com/spacemonkeygo/errors"

	"go.polydawn.net/muster/executor"
)

/*
	Error raised when the lxd daemon cannot take an instance through its
	lifecycle: creation from the image failed, the instance refuses to
	start or stop, a file push was rejected, and so on.

	These are fatal to the jobs scheduled against that instance, but the
	daemon itself is presumed healthy enough that stating the problem is
	more useful than crashing the whole run.
*/
var RemoteInstanceError *errors.ErrorClass = executor.Error.NewClass("RemoteInstanceError")
