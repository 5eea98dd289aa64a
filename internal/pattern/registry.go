package pattern

import "strings"

// family binds a set of rules to the model names they understand.
type family struct {
	name       string
	matchTerms []string
	rules      []Rule
}

// Registry routes a section's model name to the rules for that family.
type Registry struct {
	families []family
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a family. matchTerms are matched case-insensitively as
// substrings of the section's model name.
func (r *Registry) Register(name string, matchTerms []string, rules ...Rule) {
	r.families = append(r.families, family{
		name:       name,
		matchTerms: matchTerms,
		rules:      rules,
	})
}

// RulesFor returns the rules of the first family whose terms match the
// model name. Families registered earlier win, so more specific names
// ("YARIS CROSS") must be registered before their prefixes ("YARIS").
func (r *Registry) RulesFor(modelName string) []Rule {
	lower := strings.ToLower(modelName)
	for _, f := range r.families {
		for _, term := range f.matchTerms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return f.rules
			}
		}
	}
	return nil
}

// Families lists registered family names, in registration order.
func (r *Registry) Families() []string {
	names := make([]string, len(r.families))
	for i, f := range r.families {
		names[i] = f.name
	}
	return names
}
