package network

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// AliasTable collapses marker and graph-node names onto canonical
// supplement keys. The mapping is many-to-one; names without an entry
// resolve to themselves.
type AliasTable map[string]string

// Resolve maps a marker or node name to its supplement key, falling
// back to the trimmed name itself.
func (t AliasTable) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if key, ok := t[name]; ok {
		return key
	}
	return name
}

// Aliases holds the data-driven collapse tables.
type Aliases struct {
	// Supplements maps lab markers and graph nodes to scheduling keys.
	Supplements AliasTable `yaml:"supplement_keys"`
	// FoodBundles maps lab markers to the nutrient bundle used for food
	// suggestions. Not every marker schedules under the same key it eats
	// under (homocysteine maps to the B12 bundle).
	FoodBundles map[string]string `yaml:"food_bundles"`
}

// LoadAliases reads the alias tables from a YAML data file. The file is
// required reference data: without it anemia markers would schedule as
// separate supplements.
func LoadAliases(path string) (Aliases, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, eris.Wrapf(err, "network: read aliases %s", path)
	}

	var a Aliases
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return Aliases{}, eris.Wrapf(err, "network: parse aliases %s", path)
	}
	if len(a.Supplements) == 0 {
		return Aliases{}, eris.Errorf("network: aliases %s has no supplement_keys", path)
	}
	if a.FoodBundles == nil {
		a.FoodBundles = map[string]string{}
	}
	return a, nil
}
