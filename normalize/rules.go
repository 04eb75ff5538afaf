package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule maps one vocabulary entry to its canonical value. Tables are ordered
// slices, not maps: the first matching rule wins, so more specific phrases
// ("deep purple") must be declared before generic ones ("purple").
type Rule struct {
	Match string `yaml:"match"`
	To    string `yaml:"to"`
}

// Ruleset holds the normalization vocabulary shared by all source adapters.
type Ruleset struct {
	StorageTokens []string `yaml:"storage_tokens"`
	Grades        []Rule   `yaml:"grades"`
	Colours       []Rule   `yaml:"colours"`
}

// Default returns the built-in ruleset.
func Default() *Ruleset {
	return &Ruleset{
		StorageTokens: []string{
			"128GB", "64GB", "32GB", "256GB", "512GB",
			"16GB", "8GB", "4GB", "2GB",
			"1TB", "2TB", "4TB",
		},
		Grades: []Rule{
			{Match: "Neuwertig", To: "Excellent"},
			{Match: "Wie Neu", To: "Like New"},
			{Match: "Sehr Gut", To: "Very Good"},
			{Match: "Gut", To: "Good"},
			{Match: "Akzeptabel", To: "Acceptable"},
		},
		Colours: []Rule{
			// longer marketing names first
			{Match: "titanium black", To: "Black"},
			{Match: "titanium blue", To: "Blue"},
			{Match: "natural titanium", To: "Natural Titanium"},
			{Match: "desert titanium", To: "Desert Titanium"},
			{Match: "deep purple", To: "Purple"},
			{Match: "sky blue", To: "Blue"},
			{Match: "midnight green", To: "Green"},
			{Match: "space gray", To: "Grey"},
			{Match: "rose gold", To: "Gold"},

			// German
			{Match: "space grau", To: "Grey"},
			{Match: "space schwarz", To: "Black"},
			{Match: "grau", To: "Grey"},
			{Match: "gelb", To: "Yellow"},
			{Match: "rot", To: "Red"},
			{Match: "grun", To: "Green"},
			{Match: "grün", To: "Green"},
			{Match: "blau", To: "Blue"},
			{Match: "schwarz", To: "Black"},
			{Match: "weiß", To: "White"},
			{Match: "silber", To: "Silver"},
			{Match: "violett", To: "Purple"},
			{Match: "rosé", To: "Pink"},
			{Match: "mitternacht", To: "Black"},
			{Match: "wüstensand", To: "Desert Sand"},

			// English variants
			{Match: "black", To: "Black"},
			{Match: "white", To: "White"},
			{Match: "green", To: "Green"},
			{Match: "blue", To: "Blue"},
			{Match: "midnight", To: "Black"},
			{Match: "yellow", To: "Yellow"},
			{Match: "red", To: "Red"},
			{Match: "pink", To: "Pink"},
			{Match: "purple", To: "Purple"},
			{Match: "orange", To: "Orange"},
			{Match: "grey", To: "Grey"},
			{Match: "gray", To: "Grey"},
			{Match: "silver", To: "Silver"},
			{Match: "gold", To: "Gold"},
			{Match: "starlight", To: "Gold"},
			{Match: "graphite", To: "Grey"},
			{Match: "titanium", To: "Titanium"},
			{Match: "teal", To: "Teal"},
		},
	}
}

// Load reads a ruleset override from a YAML file. Sections left empty in
// the file keep the built-in defaults, so an override can replace just the
// colour table while inheriting the rest.
func Load(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %q: %w", path, err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("rules: parse %q: %w", path, err)
	}

	def := Default()
	if len(rs.StorageTokens) == 0 {
		rs.StorageTokens = def.StorageTokens
	}
	if len(rs.Grades) == 0 {
		rs.Grades = def.Grades
	}
	if len(rs.Colours) == 0 {
		rs.Colours = def.Colours
	}
	return &rs, nil
}
