package def

import (
	"github.com/spacemonkeygo/errors"
)

/*
	Validation error is a base class for anything that boils down to
	"the caller handed us nonsense": an unknown mode name, a regexp
	that does not compile, a worker count below one.  These should all
	be caught before any real work starts.
*/
var ValidationError *errors.ErrorClass = errors.NewClass("ValidationError")

/*
	Config error covers problems with the files we load at startup:
	an unreadable cache root, a policy document that does not parse.
	Fatal to the whole run; nothing sensible can happen without config.
*/
var ConfigError *errors.ErrorClass = errors.NewClass("ConfigError")
