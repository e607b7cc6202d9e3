package def

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

/*
	PolicyDocument is the on-disk shape of the policy file: the ignore
	buckets plus the per-repo layout overrides.
*/
type PolicyDocument struct {
	Ignore    Policy    `toml:"ignore" yaml:"ignore"`
	Overrides Overrides `toml:"overrides" yaml:"overrides"`
}

/*
	ParsePolicy decodes one policy document.  TOML is the native
	dialect; a `.yaml` or `.yml` name switches parsers.  The name is
	only consulted for its extension (and quoted in errors), so callers
	may pass a full path.  MAY PANIC with ConfigError.
*/
func ParsePolicy(ser []byte, name string) *PolicyDocument {
	doc := &PolicyDocument{}
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(ser, doc)
	default:
		err = toml.Unmarshal(ser, doc)
	}
	if err != nil {
		panic(ConfigError.New("cannot parse policy file %q: %s", name, err))
	}
	return doc
}
