package cli

import (
	"os"

	"go.polydawn.net/muster/def"
)

/*
	loadPolicy reads the policy document naming repos to skip and the
	per-repo layout overrides.

	A missing file is an error only when the user pointed at it
	explicitly; the default path not existing just means an empty
	policy.  MAY PANIC with `def.ConfigError`.
*/
func loadPolicy(path string, explicit bool) (def.Policy, def.Overrides) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return def.Policy{}, def.Overrides{}
		}
		panic(def.ConfigError.New("cannot read policy file %q: %s", path, err))
	}
	doc := def.ParsePolicy(content, path)
	return doc.Ignore, doc.Overrides
}
