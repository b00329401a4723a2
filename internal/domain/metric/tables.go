package metric

// Compiled-in registry data. Alias and conversion tables are data, not
// code paths: extending them is a maintenance edit here (or a config
// override through Registry options), never a runtime mutation.

func ptr(v float64) *float64 { return &v }

// Conversion factors into canonical units.
const (
	umolPerMgdLBilirubin  = 17.1049 // µmol/L per mg/dL of bilirubin
	umolPerMgdLCreatinine = 88.42   // µmol/L per mg/dL of creatinine
	unitsPerMicrokatal    = 60.0    // U/L per µkat/L
	thousandsPerLakh      = 100.0   // 10³/µL per lakh/cumm
)

var defaultMetrics = []Metric{
	{ID: ALT, CanonicalUnit: "U/L", Reference: Range{Min: ptr(7), Max: ptr(56)}, Plausible: Range{Min: ptr(0), Max: ptr(5000)}, Step: 15, HigherIsWorse: true},
	{ID: AST, CanonicalUnit: "U/L", Reference: Range{Min: ptr(10), Max: ptr(40)}, Plausible: Range{Min: ptr(0), Max: ptr(5000)}, Step: 15, HigherIsWorse: true},
	{ID: ALP, CanonicalUnit: "U/L", Reference: Range{Min: ptr(44), Max: ptr(147)}, Plausible: Range{Min: ptr(0), Max: ptr(3000)}, Step: 30, HigherIsWorse: true},
	{ID: GGT, CanonicalUnit: "U/L", Reference: Range{Min: ptr(9), Max: ptr(48)}, Plausible: Range{Min: ptr(0), Max: ptr(3000)}, Step: 20, HigherIsWorse: true},
	{ID: Bilirubin, CanonicalUnit: "mg/dL", Reference: Range{Min: ptr(0.1), Max: ptr(1.2)}, Plausible: Range{Min: ptr(0), Max: ptr(50)}, Step: 0.5, HigherIsWorse: true},
	{ID: Albumin, CanonicalUnit: "g/dL", Reference: Range{Min: ptr(3.5), Max: ptr(5.0)}, Plausible: Range{Min: ptr(0), Max: ptr(10)}, Step: 0.3, HigherIsWorse: false},
	{ID: TotalProtein, CanonicalUnit: "g/dL", Reference: Range{Min: ptr(6.3), Max: ptr(7.9)}, Plausible: Range{Min: ptr(0), Max: ptr(15)}, Step: 0.5, HigherIsWorse: false},
	{ID: Creatinine, CanonicalUnit: "mg/dL", Reference: Range{Min: ptr(0.6), Max: ptr(1.2)}, Plausible: Range{Min: ptr(0), Max: ptr(25)}, Step: 0.2, HigherIsWorse: true},
	{ID: INR, CanonicalUnit: "ratio", Reference: Range{Min: ptr(0.8), Max: ptr(1.1)}, Plausible: Range{Min: ptr(0), Max: ptr(20)}, Step: 0.2, HigherIsWorse: true},
	{ID: Sodium, CanonicalUnit: "mmol/L", Reference: Range{Min: ptr(135), Max: ptr(145)}, Plausible: Range{Min: ptr(90), Max: ptr(200)}, Step: 2, HigherIsWorse: false},
	{ID: Potassium, CanonicalUnit: "mmol/L", Reference: Range{Min: ptr(3.5), Max: ptr(5.1)}, Plausible: Range{Min: ptr(1), Max: ptr(12)}, Step: 0.3, HigherIsWorse: true},
	{ID: Platelets, CanonicalUnit: "10^3/uL", Reference: Range{Min: ptr(150), Max: ptr(400)}, Plausible: Range{Min: ptr(0), Max: ptr(2000)}, Step: 25, HigherIsWorse: false},
	{ID: Hemoglobin, CanonicalUnit: "g/dL", Reference: Range{Min: ptr(12), Max: ptr(17)}, Plausible: Range{Min: ptr(0), Max: ptr(25)}, Step: 0.8, HigherIsWorse: false},
}

// defaultAliases maps raw panel spellings to canonical metrics. Keys are
// normalized at registry build, so natural spellings are fine here.
var defaultAliases = map[string]ID{
	// ALT
	"alt":                        ALT,
	"sgpt":                       ALT,
	"alanine aminotransferase":   ALT,
	"alanine transaminase":       ALT,
	"alt (sgpt)":                 ALT,
	"sgpt (alt)":                 ALT,
	// AST
	"ast":                          AST,
	"sgot":                         AST,
	"aspartate aminotransferase":   AST,
	"aspartate transaminase":       AST,
	"ast (sgot)":                   AST,
	"sgot (ast)":                   AST,
	// ALP
	"alp":                  ALP,
	"alkaline phosphatase": ALP,
	"alk phos":             ALP,
	"alk. phosphatase":     ALP,
	// GGT
	"ggt":                         GGT,
	"ggtp":                        GGT,
	"gamma gt":                    GGT,
	"gamma glutamyl transferase":  GGT,
	"gamma-glutamyl transpeptidase": GGT,
	// Bilirubin
	"bilirubin":        Bilirubin,
	"total bilirubin":  Bilirubin,
	"bilirubin total":  Bilirubin,
	"bilirubin (total)": Bilirubin,
	"t. bilirubin":     Bilirubin,
	"t bil":            Bilirubin,
	"tbil":             Bilirubin,
	"serum bilirubin":  Bilirubin,
	// Albumin
	"albumin":       Albumin,
	"serum albumin": Albumin,
	"alb":           Albumin,
	"s. albumin":    Albumin,
	// Total protein
	"total protein":   TotalProtein,
	"protein total":   TotalProtein,
	"serum protein":   TotalProtein,
	"protein (total)": TotalProtein,
	// Creatinine
	"creatinine":       Creatinine,
	"serum creatinine": Creatinine,
	"creat":            Creatinine,
	"s. creatinine":    Creatinine,
	"cr":               Creatinine,
	// INR
	"inr":                            INR,
	"international normalized ratio": INR,
	"pt inr":                         INR,
	"pt/inr":                         INR,
	"prothrombin time inr":           INR,
	// Sodium
	"sodium":       Sodium,
	"serum sodium": Sodium,
	"na":           Sodium,
	"na+":          Sodium,
	"s. sodium":    Sodium,
	// Potassium
	"potassium":       Potassium,
	"serum potassium": Potassium,
	"k":               Potassium,
	"k+":              Potassium,
	// Platelets
	"platelets":      Platelets,
	"platelet":       Platelets,
	"platelet count": Platelets,
	"plt":            Platelets,
	"plt count":      Platelets,
	"total platelet count": Platelets,
	// Hemoglobin
	"hemoglobin":  Hemoglobin,
	"haemoglobin": Hemoglobin,
	"hb":          Hemoglobin,
	"hgb":         Hemoglobin,
}

// defaultConversions maps per-metric source units to canonical-unit
// converters. Keys are normalized at registry build.
var defaultConversions = map[ID]map[string]Converter{
	Bilirubin: {
		"umol/l": func(v float64) float64 { return v / umolPerMgdLBilirubin },
	},
	Creatinine: {
		"umol/l": func(v float64) float64 { return v / umolPerMgdLCreatinine },
	},
	Albumin: {
		"g/l": func(v float64) float64 { return v / 10 },
	},
	TotalProtein: {
		"g/l": func(v float64) float64 { return v / 10 },
	},
	Hemoglobin: {
		"g/l": func(v float64) float64 { return v / 10 },
	},
	ALT: {
		"ukat/l": func(v float64) float64 { return v * unitsPerMicrokatal },
	},
	AST: {
		"ukat/l": func(v float64) float64 { return v * unitsPerMicrokatal },
	},
	Platelets: {
		"lakhs/cumm": func(v float64) float64 { return v * thousandsPerLakh },
		"lakh/cumm":  func(v float64) float64 { return v * thousandsPerLakh },
	},
}

// defaultUnitSynonyms lists spellings that already denote the canonical
// unit and therefore need no conversion.
var defaultUnitSynonyms = map[ID][]string{
	ALT:          {"iu/l", "units/l", "u/i"},
	AST:          {"iu/l", "units/l", "u/i"},
	ALP:          {"iu/l", "units/l"},
	GGT:          {"iu/l", "units/l"},
	Bilirubin:    {"mg%"},
	Albumin:      {"gm/dl", "g%", "gm%"},
	TotalProtein: {"gm/dl", "g%", "gm%"},
	Creatinine:   {"mg%"},
	INR:          {"ratio", "r"},
	// mEq/L and mmol/L are numerically identical for monovalent ions.
	Sodium:    {"meq/l"},
	Potassium: {"meq/l"},
	// 10^9/L equals 10^3/µL; extractor output varies wildly here.
	Platelets:  {"x10^3/ul", "10^9/l", "x10^9/l", "/nl", "k/ul", "thou/ul", "thousand/ul", "thou/cumm", "10^3/cumm"},
	Hemoglobin: {"gm/dl", "g%", "gm%"},
}
