package pattern

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a custom rule set.
type ruleFile struct {
	Families []struct {
		Name       string     `yaml:"name"`
		MatchTerms []string   `yaml:"match_terms"`
		Rules      []RuleSpec `yaml:"rules"`
	} `yaml:"families"`
}

// LoadRegistry reads a YAML rule file and compiles it into a registry.
// This is how dealer-specific layouts are supported without a rebuild.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "pattern: read rule file")
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "pattern: parse rule file")
	}

	registry := NewRegistry()
	for _, fam := range file.Families {
		if fam.Name == "" || len(fam.MatchTerms) == 0 {
			return nil, eris.Errorf("pattern: family %q needs a name and match terms", fam.Name)
		}
		rules := make([]Rule, 0, len(fam.Rules))
		for _, spec := range fam.Rules {
			rule, err := spec.Build()
			if err != nil {
				return nil, eris.Wrapf(err, "pattern: family %s", fam.Name)
			}
			rules = append(rules, rule)
		}
		registry.Register(fam.Name, fam.MatchTerms, rules...)
	}

	return registry, nil
}
