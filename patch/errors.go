package patch

import (
	"github.com/spacemonkeygo/errors"
)

// grouping, do not instantiate
var Error *errors.ErrorClass = errors.NewClass("PatchError")

/*
	Error raised when a repository offers none of the manifest formats
	we know how to rewrite.

	This aborts the affected job only; the rest of the run carries on.
*/
var UnsupportedManifest *errors.ErrorClass = Error.NewClass("UnsupportedManifest")
