package lxd

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors"
)

/*
	syncTree mirrors localRoot into the instance at remoteRoot.

	The cheap trick that makes reruns against a kept instance bearable:
	hash both sides first and push only the files that are new or have
	changed.  Files that exist only on the remote side are left alone,
	which conveniently preserves virtualenvs and tox scratch dirs built
	on earlier runs.
*/
func syncTree(inst Instance, localRoot string, remoteRoot string, log log15.Logger) {
	started := time.Now()
	local := localHashes(localRoot)
	remote := inst.RemoteHashes(remoteRoot)
	plan := planSync(local, remote)
	for _, rel := range plan {
		inst.Push(filepath.Join(localRoot, filepath.FromSlash(rel)), path.Join(remoteRoot, rel))
	}
	log.Info("synced tree into instance",
		"instance", inst.Name,
		"to", remoteRoot,
		"pushed", len(plan),
		"unchanged", len(local)-len(plan),
		"elapsed", time.Now().Sub(started).Seconds(),
	)
}

/*
	RemoteHashes inventories every file under remoteDir in the instance,
	returning content hashes keyed by '/'-separated path relative to
	remoteDir.  A directory that does not exist yet is simply empty.
*/
func (i Instance) RemoteHashes(remoteDir string) map[string]string {
	script := fmt.Sprintf("cd %s 2>/dev/null || exit 0; find . -type f -exec sha256sum {} +", shellQuote(remoteDir))
	code, stdout, stderr := i.Exec([]string{"sh", "-c", script}, "/", 0)
	if code != 0 {
		panic(RemoteInstanceError.New("cannot inventory %q in instance %q: %s", remoteDir, i.Name, strings.TrimSpace(stderr)))
	}
	return parseHashListing(stdout)
}

/*
	localHashes walks root and hashes every regular file, keyed by
	'/'-separated path relative to root.  MAY PANIC with
	`errors.IOError` if the walk stumbles.
*/
func localHashes(root string) map[string]string {
	hashes := map[string]string{}
	err := filepath.WalkDir(root, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filename)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(content)
		hashes[filepath.ToSlash(rel)] = hex.EncodeToString(sum[:])
		return nil
	})
	if err != nil {
		panic(errors.IOError.Wrap(err))
	}
	return hashes
}

/*
	parseHashListing turns `sha256sum` output back into a map of
	'/'-separated relative path to content hash.  Lines that do not look
	like hash output are skipped rather than fatal; sha256sum already
	routes its complaints to stderr.
*/
func parseHashListing(listing string) map[string]string {
	hashes := map[string]string{}
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		// format: "<64 hex chars> <path>", where the path may carry a
		// leading space or asterisk depending on read mode
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 || len(parts[0]) != 64 {
			continue
		}
		name := strings.TrimPrefix(strings.TrimLeft(parts[1], " *"), "./")
		if name == "" {
			continue
		}
		hashes[name] = parts[0]
	}
	return hashes
}

/*
	planSync lists the relative paths that need pushing: present locally
	but absent remotely, or present on both sides with differing
	content.  Sorted, so pushes happen in a deterministic order.
*/
func planSync(local map[string]string, remote map[string]string) []string {
	plan := []string{}
	for name, sum := range local {
		if remote[name] != sum {
			plan = append(plan, name)
		}
	}
	sort.Strings(plan)
	return plan
}

func shellQuote(s string) string {
	return "'" + strings.Replace(s, "'", `'\''`, -1) + "'"
}
