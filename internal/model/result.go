package model

// ProcedureKey names one of the three supported valuation procedures. The
// values double as the JSON keys of the remote output contract.
type ProcedureKey string

// Supported valuation procedures.
const (
	ProcedureErtragswert            ProcedureKey = "ertragswertverfahren"
	ProcedureUmgekehrtesErtragswert ProcedureKey = "umgekehrtesErtragswertverfahren"
	ProcedureVergleichswert         ProcedureKey = "vergleichswertverfahren"
)

// ProcedureKeys returns all procedures in canonical order.
func ProcedureKeys() []ProcedureKey {
	return []ProcedureKey{
		ProcedureErtragswert,
		ProcedureUmgekehrtesErtragswert,
		ProcedureVergleichswert,
	}
}

// ParseProcedureKey validates a procedure name coming from outside.
func ParseProcedureKey(s string) (ProcedureKey, bool) {
	for _, key := range ProcedureKeys() {
		if string(key) == s {
			return key, true
		}
	}
	return "", false
}

// Name returns the German display name.
func (k ProcedureKey) Name() string {
	switch k {
	case ProcedureErtragswert:
		return "Ertragswertverfahren"
	case ProcedureUmgekehrtesErtragswert:
		return "Umgekehrtes Ertragswertverfahren"
	case ProcedureVergleichswert:
		return "Vergleichswertverfahren"
	default:
		return string(k)
	}
}

// ExpectedUnit is the unit the output contract declares for a feasible result.
func (k ProcedureKey) ExpectedUnit() Unit {
	if k == ProcedureUmgekehrtesErtragswert {
		return UnitEURPerSquareMeter
	}
	return UnitEUR
}

// Unit labels a procedure result.
type Unit string

// Result units.
const (
	UnitEUR               Unit = "EUR"
	UnitEURPerSquareMeter Unit = "EUR/m²"
)

// Valid reports whether u is a known unit label.
func (u Unit) Valid() bool {
	return u == UnitEUR || u == UnitEURPerSquareMeter
}

// ProcedureOutcome is the validated result of one procedure. Ergebnis is nil
// exactly when Durchfuehrbar is false.
type ProcedureOutcome struct {
	Ergebnis      *float64 `json:"ergebnis"`
	Einheit       Unit     `json:"einheit"`
	Hinweis       string   `json:"hinweis,omitempty"`
	Rechenweg     []string `json:"rechenweg"`
	Durchfuehrbar bool     `json:"durchfuehrbar"`
}

// Clone returns a deep copy.
func (o ProcedureOutcome) Clone() ProcedureOutcome {
	c := o
	c.Ergebnis = cloneFloat(o.Ergebnis)
	c.Rechenweg = append([]string{}, o.Rechenweg...)
	return c
}

// ValuationResult always carries all three procedures, requested or not.
type ValuationResult struct {
	Ertragswertverfahren            ProcedureOutcome `json:"ertragswertverfahren"`
	UmgekehrtesErtragswertverfahren ProcedureOutcome `json:"umgekehrtesErtragswertverfahren"`
	Vergleichswertverfahren         ProcedureOutcome `json:"vergleichswertverfahren"`
}

// Outcome returns the outcome stored under key.
func (r ValuationResult) Outcome(key ProcedureKey) (ProcedureOutcome, bool) {
	switch key {
	case ProcedureErtragswert:
		return r.Ertragswertverfahren, true
	case ProcedureUmgekehrtesErtragswert:
		return r.UmgekehrtesErtragswertverfahren, true
	case ProcedureVergleichswert:
		return r.Vergleichswertverfahren, true
	default:
		return ProcedureOutcome{}, false
	}
}

// Clone returns a deep copy.
func (r ValuationResult) Clone() ValuationResult {
	return ValuationResult{
		Ertragswertverfahren:            r.Ertragswertverfahren.Clone(),
		UmgekehrtesErtragswertverfahren: r.UmgekehrtesErtragswertverfahren.Clone(),
		Vergleichswertverfahren:         r.Vergleichswertverfahren.Clone(),
	}
}

// LandValueResult is the validated outcome of a land-value lookup.
type LandValueResult struct {
	Quelle         string  `json:"quelle"`
	Region         string  `json:"region"`
	Hinweise       string  `json:"hinweise"`
	Bodenrichtwert float64 `json:"bodenrichtwert"`
}
