package pattern

// Built-in rule sets for the Toyota Denmark price-list layout. Each
// family covers one model line; trims repeated across leasing sections
// aggregate into a single candidate per powertrain identity.

// Engine patterns for the Danish Toyota sheets. The first capture group
// is always the horsepower figure.
const (
	engine10Benzin = `1\.0\s+benzin\s+(\d{2,3})\s*hk`
	engine15Hybrid = `1\.5\s+Hybrid\s+(\d{2,3})\s*hk`
	engine18Hybrid = `1\.8\s+Hybrid\s+(\d{2,3})\s*hk`
	engine20Hybrid = `2\.0\s+Hybrid\s+(\d{2,3})\s*hk`
)

// DefaultRegistry returns the rule registry for Toyota Denmark sheets.
// YARIS CROSS registers before YARIS so the longer name routes first.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("aygo-x", []string{"AYGO"},
		RuleSpec{Name: "aygo-active", Trim: "Active", EnginePattern: engine10Benzin,
			ExcludeMarkers: []string{"Automatgear"}}.MustBuild(),
		RuleSpec{Name: "aygo-active-automatgear", Trim: "Active", EnginePattern: engine10Benzin,
			RequireMarker: "Automatgear"}.MustBuild(),
		RuleSpec{Name: "aygo-pulse", Trim: "Pulse", EnginePattern: engine10Benzin,
			ExcludeMarkers: []string{"Automatgear"}}.MustBuild(),
		RuleSpec{Name: "aygo-pulse-automatgear", Trim: "Pulse", EnginePattern: engine10Benzin,
			RequireMarker: "Automatgear"}.MustBuild(),
	)

	r.Register("yaris-cross", []string{"YARIS CROSS"},
		RuleSpec{Name: "yaris-cross-active", Trim: "Active", EnginePattern: engine15Hybrid,
			ExcludeMarkers: []string{"Safety"}}.MustBuild(),
		RuleSpec{Name: "yaris-cross-active-safety", Trim: "Active Safety", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-cross-style", Trim: "Style", EnginePattern: engine15Hybrid,
			ExcludeMarkers: []string{"Comfort", "Safety"}}.MustBuild(),
		RuleSpec{Name: "yaris-cross-style-comfort", Trim: "Style Comfort", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-cross-style-safety", Trim: "Style Safety", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-cross-elegant", Trim: "Elegant", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-cross-gr-sport", Trim: "GR Sport", EnginePattern: engine15Hybrid}.MustBuild(),
	)

	r.Register("yaris", []string{"YARIS"},
		RuleSpec{Name: "yaris-active", Trim: "Active", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-style", Trim: "Style", EnginePattern: engine15Hybrid,
			ExcludeMarkers: []string{"Comfort"}}.MustBuild(),
		RuleSpec{Name: "yaris-style-comfort", Trim: "Style Comfort", EnginePattern: engine15Hybrid}.MustBuild(),
		RuleSpec{Name: "yaris-gr-sport", Trim: "GR Sport", EnginePattern: engine15Hybrid}.MustBuild(),
	)

	r.Register("corolla-touring-sports", []string{"COROLLA"},
		RuleSpec{Name: "corolla-ts-active", Trim: "Active", EnginePattern: engine18Hybrid}.MustBuild(),
		RuleSpec{Name: "corolla-ts-active-20", Trim: "Active", EnginePattern: engine20Hybrid}.MustBuild(),
		RuleSpec{Name: "corolla-ts-style", Trim: "Style", EnginePattern: engine18Hybrid,
			ExcludeMarkers: []string{"Safety"}}.MustBuild(),
		RuleSpec{Name: "corolla-ts-style-safety", Trim: "Style Safety", EnginePattern: engine18Hybrid}.MustBuild(),
		RuleSpec{Name: "corolla-ts-gr-sport", Trim: "GR Sport", EnginePattern: engine20Hybrid}.MustBuild(),
	)

	r.Register("bz4x", []string{"BZ4X"},
		RuleSpec{Name: "bz4x-active", Trim: "Active", Electric: true}.MustBuild(),
		RuleSpec{Name: "bz4x-executive", Trim: "Executive", Electric: true,
			ExcludeMarkers: []string{"Panorama"}}.MustBuild(),
		RuleSpec{Name: "bz4x-executive-panorama", Trim: "Executive Panorama", Electric: true}.MustBuild(),
	)

	r.Register("urban-cruiser", []string{"URBAN CRUISER"},
		RuleSpec{Name: "urban-cruiser-active", Trim: "Active", Electric: true}.MustBuild(),
		RuleSpec{Name: "urban-cruiser-pulse", Trim: "Pulse", Electric: true}.MustBuild(),
		RuleSpec{Name: "urban-cruiser-style", Trim: "Style", Electric: true}.MustBuild(),
	)

	return r
}
