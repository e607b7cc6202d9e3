package lxd

import (
	"strings"
	"testing"

	"go.polydawn.net/muster/def"
	"go.polydawn.net/muster/lib/testutil"
)

func TestInstanceName(t *testing.T) {
	testutil.WantEqual(t,
		instanceName("muster", "fleet-operators/charms/one"),
		"muster-fleet-operators-charms-one")
	testutil.WantEqual(t,
		instanceName("muster", "Weird_Path.2"),
		"muster-weird-path-2")

	name := instanceName("muster", strings.Repeat("charms/very-long-name/", 5))
	if len(name) > 63 {
		t.Errorf("instance name %q is longer than lxd allows", name)
	}
	if strings.HasSuffix(name, "-") {
		t.Errorf("instance name %q has a dangling hyphen", name)
	}
	if !strings.HasPrefix(name, "muster-charms-very-long-name") {
		t.Errorf("instance name %q lost its prefix", name)
	}
}

func TestRelativeToCache(t *testing.T) {
	cfg := &def.Settings{CacheRoot: "/srv/cache"}
	testutil.WantEqual(t, relativeToCache(cfg, "/srv/cache/fleet/charms/one"), "fleet/charms/one")
	testutil.WantEqual(t, relativeToCache(cfg, "/srv/cache"), ".")
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a directory outside the cache")
		}
	}()
	relativeToCache(cfg, "/srv/elsewhere")
}
