package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli"

	"go.polydawn.net/muster/def"
)

/*
	setupLogging routes structured logs to the journal stream at the
	requested level.  MAY PANIC with a BADARGS CLIError on a level name
	log15 does not know.
*/
func setupLogging(journal io.Writer, level string) log15.Logger {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		panic(Error.NewWith(
			fmt.Sprintf("Unknown log level %q", level),
			SetExitCode(EXIT_BADARGS),
		))
	}
	log := log15.New()
	log.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(journal, log15.TerminalFormat())))
	return log
}

// compileRepoPattern anchors the include filter and makes it
// case-insensitive.  MAY PANIC with a BADARGS CLIError.
func compileRepoPattern(expr string) *regexp.Regexp {
	pattern, err := regexp.Compile(`(?i)^(?:` + expr + `)`)
	if err != nil {
		panic(Error.NewWith(
			fmt.Sprintf("Invalid repo pattern %q: %s", expr, err),
			SetExitCode(EXIT_BADARGS),
		))
	}
	return pattern
}

func resolveCacheRoot(path string) string {
	cacheRoot, err := filepath.Abs(path)
	if err != nil {
		panic(def.ConfigError.New("cannot resolve cache path %q: %s", path, err))
	}
	return cacheRoot
}

/*
	assembleSettings turns parsed flags into the one Settings struct the
	rest of the run reads.  All the validation that can happen before
	any work starts happens here.
*/
func assembleSettings(ctx *cli.Context) *def.Settings {
	workers := ctx.Int("workers")
	if workers < 1 {
		workers = 1
	}
	pattern := compileRepoPattern(ctx.String("repo"))
	switch mode := ctx.String("mode"); mode {
	case "local", "lxd", "lxd-per-job":
	default:
		panic(Error.NewWith(
			fmt.Sprintf("No such mode %q: pick local, lxd, or lxd-per-job", mode),
			SetExitCode(EXIT_BADARGS),
		))
	}
	cacheRoot := resolveCacheRoot(ctx.String("cache"))
	policy, overrides := loadPolicy(ctx.String("policy"), ctx.IsSet("policy"))
	return &def.Settings{
		CacheRoot: cacheRoot,
		Env:       ctx.String("env"),
		Workers:   workers,
		Pattern:   pattern,
		Sample:    ctx.Int("sample"),
		Dep:       ctx.String("dep"),
		Patch: def.PatchSpec{
			Source: ctx.String("dep-source"),
			Branch: ctx.String("dep-branch"),
		},
		Mode:           ctx.String("mode"),
		LxdName:        ctx.String("lxd-name"),
		LxdImage:       ctx.String("lxd-image"),
		KeepInstance:   ctx.Bool("keep-lxd-instance"),
		FreshTox:       ctx.Bool("fresh-tox"),
		DiscardChanges: ctx.Bool("discard-changes"),
		Pull:           ctx.Bool("pull"),
		Timeout:        ctx.Duration("timeout"),
		Verbose:        ctx.Bool("verbose"),
		Serialize:      ctx.Bool("serialize"),
		Policy:         policy,
		Overrides:      overrides,
	}
}
