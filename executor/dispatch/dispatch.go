package executordispatch

import (
	"github.com/inconshreveable/log15"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/executor"
	"go.polydawn.net/muster/executor/local"
	"go.polydawn.net/muster/executor/lxd"
)

func Get(cfg *def.Settings, log log15.Logger) executor.Executor {
	var x executor.Executor

	switch cfg.Mode {
	case "local":
		x = &local.Executor{}
	case "lxd":
		x = &lxd.Executor{}
	case "lxd-per-job":
		x = &lxd.PerJobExecutor{}
	default:
		panic(def.ValidationError.New("No such execution mode %q", cfg.Mode))
	}

	x.Configure(cfg, log)

	return x
}
