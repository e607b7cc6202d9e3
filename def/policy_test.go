package def

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/muster/lib/testutil"
)

func TestCategorize(t *testing.T) {
	policy := Policy{
		Expensive: []string{"pricey-operators"},
		Manual:    []string{"fleet-operators"},
	}

	Convey("Categorize matches exact paths only", t, func() {
		category, ok := policy.Categorize("pricey-operators")
		So(ok, ShouldBeTrue)
		So(category, ShouldEqual, "expensive")
		_, ok = policy.Categorize("fleet-operators/charms/one")
		So(ok, ShouldBeFalse)
	})

	Convey("CategorizeJob lets a container entry claim its members", t, func() {
		category, ok := policy.CategorizeJob("fleet-operators/charms/one")
		So(ok, ShouldBeTrue)
		So(category, ShouldEqual, "manual")
		_, ok = policy.CategorizeJob("free-operators/charms/one")
		So(ok, ShouldBeFalse)
		_, ok = policy.CategorizeJob("free-operator")
		So(ok, ShouldBeFalse)
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Both dialects land in the same shape", t, func() {
		tomlDoc := ParsePolicy([]byte(""+
			"[ignore]\n"+
			"expensive = [\"a\"]\n"+
			"[overrides]\n"+
			"force_bundle = [\"b\"]\n"+
			"[overrides.subdir]\n"+
			"\"c\" = \"charm\"\n"), "muster.toml")
		yamlDoc := ParsePolicy([]byte(""+
			"ignore:\n"+
			"  expensive: [a]\n"+
			"overrides:\n"+
			"  force_bundle: [b]\n"+
			"  subdir:\n"+
			"    c: charm\n"), "muster.yaml")
		So(tomlDoc, ShouldResemble, yamlDoc)
		So(tomlDoc.Ignore.Expensive, ShouldResemble, []string{"a"})
		So(tomlDoc.Overrides.Subdir["c"], ShouldEqual, "charm")
	})

	Convey("Garbage is a loud ConfigError", t, func() {
		So(func() {
			ParsePolicy([]byte("= 'not toml"), "muster.toml")
		}, testutil.ShouldPanicWith, ConfigError)
	})
}
