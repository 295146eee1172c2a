package model

// ValuationRequest is the full set of facts a user supplies for a valuation.
// Optional facts are pointers; nil means "not provided" and is never sent to
// the remote service.
type ValuationRequest struct {
	Address       Address       `json:"address"`
	BuildingClass BuildingClass `json:"buildingClass" validate:"omitempty,buildingclass"`

	KaufpreisOhneNebenkosten *float64 `json:"kaufpreisOhneNebenkosten,omitempty" validate:"omitempty,gte=0"`
	Verkehrswert             *float64 `json:"verkehrswert,omitempty" validate:"omitempty,gte=0"`
	VerkehrswertAktiv        bool     `json:"verkehrswertAktiv"`
	NebenkostenGesamt        *float64 `json:"nebenkostenGesamt,omitempty" validate:"omitempty,gte=0"`
	DatumKaufvertrag         *string  `json:"datumKaufvertrag,omitempty" validate:"omitempty,isodate"`
	UrspruenglichesBaujahr   *int     `json:"urspruenglichesBaujahr,omitempty" validate:"omitempty,gte=1800,notfuture"`

	MiteigentumsanteilZaehler *int `json:"miteigentumsanteilZaehler,omitempty" validate:"omitempty,gte=1"`
	MiteigentumsanteilNenner  *int `json:"miteigentumsanteilNenner,omitempty" validate:"omitempty,gte=1"`

	FiktivesBaujahrBMF          *int     `json:"fiktivesBaujahrBMF,omitempty" validate:"omitempty,gte=1800,notfuture"`
	FiktivesBaujahrImmoWertV    *int     `json:"fiktivesBaujahrImmoWertV,omitempty" validate:"omitempty,gte=1800,notfuture"`
	FiktiveBaujahreAktiv        bool     `json:"fiktiveBaujahreAktiv"`
	Liegenschaftszins           *float64 `json:"liegenschaftszins,omitempty" validate:"omitempty,gte=0,lte=100"`
	LiegenschaftszinsAktiv      bool     `json:"liegenschaftszinsAktiv"`
	Restnutzungsdauer           *float64 `json:"restnutzungsdauer,omitempty" validate:"omitempty,gte=0,lte=200"`
	ReparaturInvestitionsbedarf *float64 `json:"reparaturInvestitionsbedarf,omitempty" validate:"omitempty,gte=0"`

	Bodenrichtwert      *float64 `json:"bodenrichtwert,omitempty" validate:"omitempty,gte=0"`
	Grundstuecksflaeche *float64 `json:"grundstuecksflaeche,omitempty" validate:"omitempty,gte=0"`

	UseErtragswertverfahren            bool `json:"useErtragswertverfahren"`
	UseUmgekehrtesErtragswertverfahren bool `json:"useUmgekehrtesErtragswertverfahren"`
	UseVergleichswertverfahren         bool `json:"useVergleichswertverfahren"`
}

// Uses reports whether the given procedure was requested.
func (r ValuationRequest) Uses(key ProcedureKey) bool {
	switch key {
	case ProcedureErtragswert:
		return r.UseErtragswertverfahren
	case ProcedureUmgekehrtesErtragswert:
		return r.UseUmgekehrtesErtragswertverfahren
	case ProcedureVergleichswert:
		return r.UseVergleichswertverfahren
	default:
		return false
	}
}

// SelectedProcedures returns the requested procedures in canonical order.
func (r ValuationRequest) SelectedProcedures() []ProcedureKey {
	var selected []ProcedureKey
	for _, key := range ProcedureKeys() {
		if r.Uses(key) {
			selected = append(selected, key)
		}
	}
	return selected
}

// Clone returns a deep copy so snapshots cannot be changed through shared pointers.
func (r ValuationRequest) Clone() ValuationRequest {
	c := r
	c.KaufpreisOhneNebenkosten = cloneFloat(r.KaufpreisOhneNebenkosten)
	c.Verkehrswert = cloneFloat(r.Verkehrswert)
	c.NebenkostenGesamt = cloneFloat(r.NebenkostenGesamt)
	c.UrspruenglichesBaujahr = cloneInt(r.UrspruenglichesBaujahr)
	c.MiteigentumsanteilZaehler = cloneInt(r.MiteigentumsanteilZaehler)
	c.MiteigentumsanteilNenner = cloneInt(r.MiteigentumsanteilNenner)
	c.FiktivesBaujahrBMF = cloneInt(r.FiktivesBaujahrBMF)
	c.FiktivesBaujahrImmoWertV = cloneInt(r.FiktivesBaujahrImmoWertV)
	c.Liegenschaftszins = cloneFloat(r.Liegenschaftszins)
	c.Restnutzungsdauer = cloneFloat(r.Restnutzungsdauer)
	c.ReparaturInvestitionsbedarf = cloneFloat(r.ReparaturInvestitionsbedarf)
	c.Bodenrichtwert = cloneFloat(r.Bodenrichtwert)
	c.Grundstuecksflaeche = cloneFloat(r.Grundstuecksflaeche)
	if r.DatumKaufvertrag != nil {
		d := *r.DatumKaufvertrag
		c.DatumKaufvertrag = &d
	}
	return c
}

// LandValueQuery is the input of a land-value lookup.
type LandValueQuery struct {
	Verkehrswert  *float64      `json:"verkehrswert,omitempty" validate:"omitempty,gte=0"`
	Address       Address       `json:"address"`
	BuildingClass BuildingClass `json:"buildingClass,omitempty" validate:"omitempty,buildingclass"`
}

// LandValueQuery derives the land-value lookup input. The market value hint is
// only passed on when its toggle is active.
func (r ValuationRequest) LandValueQuery() LandValueQuery {
	q := LandValueQuery{
		Address:       r.Address,
		BuildingClass: r.BuildingClass,
	}
	if r.VerkehrswertAktiv {
		q.Verkehrswert = cloneFloat(r.Verkehrswert)
	}
	return q
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
