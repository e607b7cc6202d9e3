package lxd

import (
	"github.com/polydawn/gosh"
)

/*
	Base command for all interactions with the lxd daemon.

	Everything goes through the one lxc client binary; shelling out
	keeps us agnostic of snap versus native installs and of daemon API
	versions, at the price of parsing its output where we need answers.
*/
var lxc gosh.Command = gosh.Gosh(
	"lxc",
	gosh.NullIO,
)
