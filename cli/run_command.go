package cli

import (
	"fmt"
	"io"

	"github.com/spacemonkeygo/errors/try"
	"github.com/urfave/cli"

	"go.polydawn.net/muster/executor/dispatch"
	"go.polydawn.net/muster/report"
	"go.polydawn.net/muster/scheduler"
	"go.polydawn.net/muster/selector"
)

func RunCommandPattern(output io.Writer, journal io.Writer) cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "Muster every repo in the cache, run its trials, and report who passed",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "cache",
				Value: ".cache",
				Usage: "Directory holding the repository checkouts",
			},
			cli.StringFlag{
				Name:  "env, e",
				Usage: "Tox environment to run (default: each repo's own envlist)",
			},
			cli.IntFlag{
				Name:  "workers, w",
				Value: 3,
				Usage: "Number of repos trialled in parallel",
			},
			cli.StringFlag{
				Name:  "repo",
				Value: ".*",
				Usage: "Only consider repos matching this pattern (case-insensitive, anchored)",
			},
			cli.IntFlag{
				Name:  "sample",
				Usage: "Cap the number of jobs; 0 runs everything",
			},
			cli.StringFlag{
				Name:  "policy",
				Value: "muster.toml",
				Usage: "Policy file naming repos to skip and layout overrides",
			},
			cli.StringFlag{
				Name:  "dep",
				Value: "ops",
				Usage: "Dependency to swap out of each repo's manifests",
			},
			cli.StringFlag{
				Name:  "dep-source",
				Usage: "Git URL to install the dependency from; empty leaves manifests alone",
			},
			cli.StringFlag{
				Name:  "dep-branch",
				Usage: "Branch of dep-source to pin",
			},
			cli.StringFlag{
				Name:  "mode",
				Value: "local",
				Usage: "Execution backend: local, lxd, or lxd-per-job",
			},
			cli.StringFlag{
				Name:  "lxd-name",
				Value: "muster",
				Usage: "Name of the lxd instance (and prefix for per-job ones)",
			},
			cli.StringFlag{
				Name:  "lxd-image",
				Value: "ubuntu-22.04",
				Usage: "Image alias for newly created lxd instances",
			},
			cli.BoolFlag{
				Name:  "keep-lxd-instance",
				Usage: "Leave the lxd instance in place after the run",
			},
			cli.BoolFlag{
				Name:  "fresh-tox",
				Usage: "Remove each repo's .tox directory before running",
			},
			cli.BoolFlag{
				Name:  "discard-changes",
				Usage: "Run `git checkout -- .` in each repo before running",
			},
			cli.BoolFlag{
				Name:  "pull",
				Usage: "Run `git pull --ff-only` in each repo before running",
			},
			cli.DurationFlag{
				Name:  "timeout",
				Usage: "Kill any single trial after this long; 0 means never",
			},
			cli.BoolFlag{
				Name:  "serialize, s",
				Usage: "Emit the full result set as JSON on stdout",
			},
			cli.BoolFlag{
				Name:  "verbose, v",
				Usage: "Also name every failed run in the summary",
			},
		},
		Action: func(ctx *cli.Context) {
			// Parse args
			log := setupLogging(journal, ctx.GlobalString("log-level"))
			cfg := assembleSettings(ctx)

			// Pick the job list
			jobs := selector.Scan(cfg, log)
			log.Info("mustered the fleet", "jobs", len(jobs), "workers", cfg.Workers, "mode", cfg.Mode)

			// Ready the backend, then march everything through it.
			// Teardown runs even when the run comes apart midway, or a
			// kept lxd instance would leak on every failure.
			x := executordispatch.Get(cfg, log)
			collector := &report.Collector{}
			try.Do(func() {
				scheduler.Run(cfg, jobs, x, collector, log)
			}).Finally(func() {
				x.Teardown()
			}).Done()

			// Output.
			// Note that all logs, progress, etc are routed to "journal"
			// (typically, stderr), while the serialized result set is routed
			// to "output" (typically, stdout), so it can be piped and parsed
			// mechanically.
			results := collector.Results()
			if cfg.Serialize {
				if err := report.Serialize(output, results); err != nil {
					panic(err)
				}
				report.Summarize(journal, results, collector.Dropped(), cfg.Verbose)
			} else {
				report.Summarize(output, results, collector.Dropped(), cfg.Verbose)
			}

			// Exit nonzero with our own "not everything passed" indicator code, if applicable.
			failed := 0
			for _, result := range results {
				if !result.Passed {
					failed++
				}
			}
			if failed > 0 || collector.Dropped() > 0 {
				panic(Exit.NewWith(
					fmt.Sprintf("%d runs failed and %d jobs were dropped", failed, collector.Dropped()),
					SetExitCode(EXIT_JOB),
				))
			}
		},
	}
}
