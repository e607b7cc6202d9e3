package scheduler

import (
	"github.com/spacemonkeygo/errors"
)

/*
	Error is a grouping category for scheduler errors; do not
	instantiate it directly.
*/
var Error *errors.ErrorClass = errors.NewClass("SchedulerError")

/*
	Error raised when a pre-run preparation step (discarding changes,
	pulling, clearing the tox scratch dir) fails.  Fatal to that one
	job; the rest of the run proceeds.
*/
var PrepError *errors.ErrorClass = Error.NewClass("PrepError")
