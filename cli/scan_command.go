package cli

import (
	"fmt"
	"io"

	"github.com/ugorji/go/codec"
	"github.com/urfave/cli"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/selector"
)

// one row of `muster scan` output
type scanEntry struct {
	Repo string `json:"repo"`
	Env  string `json:"env,omitempty"`
	Skip string `json:"skip,omitempty"`
}

func ScanCommandPattern(output io.Writer, journal io.Writer) cli.Command {
	return cli.Command{
		Name:  "scan",
		Usage: "List the jobs a run would muster, without running anything",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "cache",
				Value: ".cache",
				Usage: "Directory holding the repository checkouts",
			},
			cli.StringFlag{
				Name:  "env, e",
				Usage: "Tox environment the listed jobs would run",
			},
			cli.StringFlag{
				Name:  "repo",
				Value: ".*",
				Usage: "Only consider repos matching this pattern (case-insensitive, anchored)",
			},
			cli.IntFlag{
				Name:  "sample",
				Usage: "Cap the number of jobs; 0 lists everything",
			},
			cli.StringFlag{
				Name:  "policy",
				Value: "muster.toml",
				Usage: "Policy file naming repos to skip and layout overrides",
			},
			cli.BoolFlag{
				Name:  "serialize, s",
				Usage: "Emit the job list as JSON on stdout",
			},
		},
		Action: func(ctx *cli.Context) {
			// Parse args
			log := setupLogging(journal, ctx.GlobalString("log-level"))
			policy, overrides := loadPolicy(ctx.String("policy"), ctx.IsSet("policy"))
			cfg := &def.Settings{
				CacheRoot: resolveCacheRoot(ctx.String("cache")),
				Env:       ctx.String("env"),
				Pattern:   compileRepoPattern(ctx.String("repo")),
				Sample:    ctx.Int("sample"),
				Policy:    policy,
				Overrides: overrides,
			}

			// The same selection a run would make.  Containers named by
			// force_bundle are listed whole; a run expands them at
			// dispatch time.
			entries := []scanEntry{}
			for _, job := range selector.Scan(cfg, log) {
				entry := scanEntry{Repo: job.Repo, Env: job.Env}
				entry.Skip, _ = cfg.Policy.CategorizeJob(job.Repo)
				entries = append(entries, entry)
			}

			// Output.  Skip verdicts name the policy bucket, so the line
			// points straight at the entry to edit.
			if ctx.Bool("serialize") {
				if err := codec.NewEncoder(output, &codec.JsonHandle{Indent: -1}).Encode(entries); err != nil {
					panic(err)
				}
				output.Write([]byte{'\n'})
				return
			}
			for _, entry := range entries {
				if entry.Skip != "" {
					fmt.Fprintf(output, "skip  %s  (%s)\n", entry.Repo, entry.Skip)
				} else {
					fmt.Fprintf(output, "run   %s\n", entry.Repo)
				}
			}
		},
	}
}
