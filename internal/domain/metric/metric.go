// Package metric holds the canonical lab-metric registry and the alias
// resolver that maps raw extracted (name, unit) pairs onto it.
//
// Resolution is pure and in-memory: the registry is built once at
// startup from the compiled-in tables plus any configured overrides,
// and is never mutated afterwards.
package metric

import "strings"

// ID identifies a canonical lab metric.
type ID string

// Canonical metric identifiers.
const (
	ALT          ID = "ALT"
	AST          ID = "AST"
	ALP          ID = "ALP"
	GGT          ID = "GGT"
	Bilirubin    ID = "BILIRUBIN"
	Albumin      ID = "ALBUMIN"
	TotalProtein ID = "TOTAL_PROTEIN"
	Creatinine   ID = "CREATININE"
	INR          ID = "INR"
	Sodium       ID = "SODIUM"
	Potassium    ID = "POTASSIUM"
	Platelets    ID = "PLATELETS"
	Hemoglobin   ID = "HEMOGLOBIN"
)

// Unit is a canonical unit spelling, e.g. "mg/dL".
type Unit string

// Range is a closed interval with optional bounds.
type Range struct {
	Min *float64
	Max *float64
}

// Contains reports whether v falls inside the range. Unset bounds are open.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Converter converts a value from a source unit into the canonical unit.
type Converter func(v float64) float64

// Metric is the static registry entry for one canonical metric.
type Metric struct {
	ID            ID
	CanonicalUnit Unit
	// Reference is the normal clinical range used for abnormal flagging.
	Reference Range
	// Plausible is the physiological sanity bound; values outside it are
	// kept but flagged low-confidence by consolidation.
	Plausible Range
	// Step is the clinically meaningful change used by trend
	// classification; smaller moves count as noise.
	Step float64
	// HigherIsWorse orients trend direction for this metric.
	HigherIsWorse bool
}

// Resolution is the successful output of Resolve.
type Resolution struct {
	Metric Metric
	// Convert is non-nil when the raw unit differs from the canonical
	// unit and a known conversion applies.
	Convert Converter
}

// Registry is the immutable alias and conversion table set.
type Registry struct {
	metrics map[ID]Metric
	aliases map[string]ID
	// conversions maps metric -> normalized source unit -> converter.
	conversions map[ID]map[string]Converter
	// unitSynonyms maps metric -> normalized spellings of the canonical unit.
	unitSynonyms map[ID]map[string]struct{}
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithAlias registers an extra raw-name alias for a canonical metric.
// Unknown metric IDs are ignored so config typos cannot poison the table.
func WithAlias(rawName string, id ID) Option {
	return func(r *Registry) {
		if _, ok := r.metrics[id]; ok {
			r.aliases[normalizeName(rawName)] = id
		}
	}
}

// WithStep overrides the trend step size for a metric.
func WithStep(id ID, step float64) Option {
	return func(r *Registry) {
		m, ok := r.metrics[id]
		if !ok || step <= 0 {
			return
		}
		m.Step = step
		r.metrics[id] = m
	}
}

// NewRegistry builds the registry from the compiled-in tables plus options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		metrics:      make(map[ID]Metric, len(defaultMetrics)),
		aliases:      make(map[string]ID, len(defaultAliases)),
		conversions:  make(map[ID]map[string]Converter),
		unitSynonyms: make(map[ID]map[string]struct{}),
	}
	for _, m := range defaultMetrics {
		r.metrics[m.ID] = m
	}
	for name, id := range defaultAliases {
		r.aliases[normalizeName(name)] = id
	}
	for id, convs := range defaultConversions {
		table := make(map[string]Converter, len(convs))
		for unit, c := range convs {
			table[normalizeUnit(unit)] = c
		}
		r.conversions[id] = table
	}
	for id, syns := range defaultUnitSynonyms {
		set := make(map[string]struct{}, len(syns))
		for _, s := range syns {
			set[normalizeUnit(s)] = struct{}{}
		}
		r.unitSynonyms[id] = set
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the registry entry for id.
func (r *Registry) Get(id ID) (Metric, bool) {
	m, ok := r.metrics[id]
	return m, ok
}

// IDs returns all registered metric IDs in stable (sorted) order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.metrics))
	for id := range r.metrics {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// Resolve maps a raw (name, unit) pair to a canonical metric.
//
// The second return is false when no alias matches the name or the unit
// is unknown for the matched metric; such candidates never enter a
// series or a score and are retained by the caller for audit.
func (r *Registry) Resolve(rawName, rawUnit string) (Resolution, bool) {
	id, ok := r.aliases[normalizeName(rawName)]
	if !ok {
		return Resolution{}, false
	}
	m := r.metrics[id]

	unit := normalizeUnit(rawUnit)
	if unit == "" || unit == normalizeUnit(string(m.CanonicalUnit)) {
		return Resolution{Metric: m}, true
	}
	if syns, ok := r.unitSynonyms[id]; ok {
		if _, ok := syns[unit]; ok {
			return Resolution{Metric: m}, true
		}
	}
	if convs, ok := r.conversions[id]; ok {
		if c, ok := convs[unit]; ok {
			return Resolution{Metric: m, Convert: c}, true
		}
	}
	// Known metric but an unit we cannot reconcile: the value is not
	// trustworthy, so the candidate stays unresolved.
	return Resolution{}, false
}

// normalizeName canonicalizes a raw metric name for alias lookup:
// lowercase, punctuation stripped, whitespace collapsed.
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// normalizeUnit canonicalizes unit spellings: lowercase, spaces removed,
// micro sign and multiplication sign folded to ASCII.
func normalizeUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	replacer := strings.NewReplacer(
		" ", "",
		"µ", "u",
		"μ", "u",
		"×", "x",
		"³", "^3",
		"⁹", "^9",
		"**", "^",
	)
	return replacer.Replace(unit)
}
