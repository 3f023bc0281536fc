package vocab

// Tables is the editable form of the vocabulary. Order matters: labels are
// tried in order, unit groups define the configuration column order and the
// first group declaring a unit owns it, keyword groups are processed in order.
type Tables struct {
	Labels         []string       `yaml:"labels"`
	Units          []UnitGroup    `yaml:"units"`
	DiameterUnits  []string       `yaml:"diameter_units"`
	WireTypes      []string       `yaml:"wire_types"`
	Keywords       []KeywordGroup `yaml:"keywords"`
	Colors         []string       `yaml:"colors"`
	ColorModifiers []string       `yaml:"color_modifiers"`
}

type UnitGroup struct {
	Property string   `yaml:"property"`
	Units    []string `yaml:"units"`
}

type KeywordGroup struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Default returns the built-in vocabulary for electrical and construction
// consumables.
func Default() Tables {
	return Tables{
		Labels: []string{"P/N", "SN", "model", "brand", "grade", "no.", "sch"},
		Units: []UnitGroup{
			{Property: "weight", Units: []string{"kg", "kg/s", "kgs", "kilo", "kilos", "lbs", "ton", "tons", "gram", "grams", "g", "lbs/ft.", "lbs/ft", "lb", "lb.", "lbs."}},
			{Property: "cross-sectional area", Units: []string{"mm sq", "mm sq."}},
			{Property: "volume", Units: []string{"cu. ft.", "ml", "litre", "liter", "liters", "litres"}},
			{Property: "length", Units: []string{"mm", "m", "in", "ft", "cm", "ft.", "meters", "mtrs"}},
			{Property: "current", Units: []string{"a", "amp", "amps", "ampere"}},
			{Property: "voltage rating", Units: []string{"v", "kv", "vdc", "vac", "v vdc", "v vac"}},
			{Property: "power rating", Units: []string{"w", "watt", "watts"}},
			{Property: "apparent power rating", Units: []string{"va", "kva"}},
			{Property: "horsepower", Units: []string{"hp"}},
			{Property: "angle", Units: []string{"deg"}},
			{Property: "frequency", Units: []string{"rad/s", "hz", "hertz"}},
			{Property: "color temperature", Units: []string{"k"}},
			{Property: "capacitance", Units: []string{"f", "mf", "uf", "pf"}},
			{Property: "inductance", Units: []string{"h", "mh", "uh", "ph"}},
			// "c" may also read as coulomb.
			{Property: "conductors", Units: []string{"c"}},
			{Property: "pins", Units: []string{"pin", "pins", "prong", "prongs"}},
			{Property: "phase", Units: []string{"phase"}},
			{Property: "pole", Units: []string{"p", "pole", "poles"}},
			{Property: "hole", Units: []string{"hole", "holes", "-hole", "-holes"}},
			{Property: "force", Units: []string{"kn"}},
			{Property: "gang", Units: []string{"gang", "-gang"}},
			{Property: "teeth", Units: []string{"teeth", "-teeth"}},
			{Property: "spline", Units: []string{"spline"}},
		},
		DiameterUnits: []string{"mm", "cm", "m", "in"},
		WireTypes: []string{
			"THHN", "THWN", "XHHW", "USE", "UF", "NM", "MC", "TECK", "BX",
			"RHW", "RW90", "THW", "PV", "FPL", "SER", "SEU", "USE-2", "MTW", "XLP",
			"SJOOW", "SOOW", "THW-2", "LSZH",
		},
		Keywords: []KeywordGroup{
			{Category: "brand", Keywords: []string{
				"Panasonic", "Phelps Dodge", "TELEMICANIQUE", "Mcgill", "Penn-union", "Exoweld",
				"Kumweld", "Firefly", "Philips", "Moldex",
			}},
		},
		Colors:         []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet", "white", "black", "gray", "brown", "pink", "grey"},
		ColorModifiers: []string{"light", "dark"},
	}
}
