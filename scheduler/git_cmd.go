package scheduler

import "github.com/polydawn/gosh"

/*
	Base command for the prep steps that touch a checkout's git state.

	The env keeps git hermetic: no system or user config leaking in,
	and no credentials prompt to wedge a worker when a remote wants a
	password it is not going to get.
*/
var git gosh.Command = gosh.Gosh(
	"git",
	gosh.NullIO,
	gosh.Opts{
		Env: map[string]string{
			"GIT_CONFIG_NOSYSTEM": "true",
			"HOME":                "/dev/null",
			"GIT_ASKPASS":         "/bin/true",
		},
	},
)
