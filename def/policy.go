package def

import (
	"strings"
)

/*
	Policy lists the repositories we decline to run, bucketed by the
	reason we decline them.  Entries are paths relative to the cache
	root, compared exactly.

	Categories are checked in declaration order and the first match
	wins, though a sane policy file lists each repo only once.
*/
type Policy struct {
	// Will pass, but take so long they drown out everything else.
	Expensive []string `toml:"expensive" yaml:"expensive" json:"expensive,omitempty"`

	// Need a human to do something first (accept a license, say).
	Manual []string `toml:"manual" yaml:"manual" json:"manual,omitempty"`

	// Dependencies that cannot be installed in this environment.
	Requirements []string `toml:"requirements" yaml:"requirements" json:"requirements,omitempty"`

	// Do not actually use the dependency we are trialling.
	NotOps []string `toml:"not_ops" yaml:"not_ops" json:"not_ops,omitempty"`

	// Everything else we have decided not to bother with.
	Misc []string `toml:"misc" yaml:"misc" json:"misc,omitempty"`
}

/*
	Categorize returns the name of the first ignore category containing
	the given repo path, or ok=false if no category claims it.
*/
func (p Policy) Categorize(repo string) (category string, ok bool) {
	buckets := []struct {
		name  string
		repos []string
	}{
		{"expensive", p.Expensive},
		{"manual", p.Manual},
		{"requirements", p.Requirements},
		{"not_ops", p.NotOps},
		{"misc", p.Misc},
	}
	for _, bucket := range buckets {
		for _, entry := range bucket.repos {
			if entry == repo {
				return bucket.name, true
			}
		}
	}
	return "", false
}

/*
	CategorizeJob extends Categorize with the container rule: when no
	category claims the exact job path, the top-level path segment is
	tried, so an entry naming a bundle covers every member inside it
	without listing each one.
*/
func (p Policy) CategorizeJob(repo string) (category string, ok bool) {
	if category, ok = p.Categorize(repo); ok {
		return
	}
	if i := strings.IndexByte(repo, '/'); i > 0 {
		return p.Categorize(repo[:i])
	}
	return "", false
}

/*
	Overrides carries per-repository layout quirks that cannot be
	detected from the checkout itself.  These used to be hardcoded
	special cases; now they ride in the policy file.
*/
type Overrides struct {
	// Repos laid out as bundles but missing the bundle marker file.
	ForceBundle []string `toml:"force_bundle" yaml:"force_bundle" json:"force_bundle,omitempty"`

	// Repos whose real project root is a subdirectory of the checkout.
	Subdir map[string]string `toml:"subdir" yaml:"subdir" json:"subdir,omitempty"`
}

func (o Overrides) ForcedBundle(repo string) bool {
	for _, entry := range o.ForceBundle {
		if entry == repo {
			return true
		}
	}
	return false
}
