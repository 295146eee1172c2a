package testutil

import (
	"errors"
	"testing"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/history"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/storage"
)

// Canned remote replies.
const (
	// ValuationReply is a clean reply where only the income approach is feasible.
	ValuationReply = `{
  "ertragswertverfahren": {"durchfuehrbar": true, "rechenweg": ["Bodenwert: 500 m² × 350,00 €/m² = 175.000 €", "Ertragswert gesamt: 420.000 €"], "ergebnis": 420000, "einheit": "EUR"},
  "umgekehrtesErtragswertverfahren": {"durchfuehrbar": false, "rechenweg": [], "ergebnis": null, "einheit": "EUR/m²", "hinweis": "Nicht angefordert"},
  "vergleichswertverfahren": {"durchfuehrbar": false, "rechenweg": [], "ergebnis": null, "einheit": "EUR", "hinweis": "Nicht angefordert"}
}`

	// FencedValuationReply wraps ValuationReply in commentary and a code fence.
	FencedValuationReply = "Hier ist das Ergebnis der Bewertung:\n\n```json\n" + ValuationReply + "\n```\n\nAlle Angaben ohne Gewähr."

	// LandValueReply is a clean land-value reply.
	LandValueReply = `{"bodenrichtwert": 350, "quelle": "BORIS Berlin, Stichtag 01.01.2024", "region": "Berlin-Mitte", "hinweise": "Wohnbaufläche"}`

	// ProseReply contains no JSON object at all.
	ProseReply = "Leider liegen mir keine ausreichenden Daten vor."
)

// ErrConnectionRefused mimics a transport-level failure.
var ErrConnectionRefused = &common.TransportError{
	Provider: "stub",
	Err:      errors.New("dial tcp 127.0.0.1:443: connect: connection refused"),
}

// Address returns a complete Berlin address.
func Address() model.Address {
	return model.Address{Strasse: "Invalidenstraße", Hausnummer: "117", PLZ: "10115", Ort: "Berlin"}
}

// RequestBuilder assembles valuation requests for tests.
type RequestBuilder struct {
	req model.ValuationRequest
}

// NewRequest starts from a complete address and no procedures.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{req: model.ValuationRequest{Address: Address()}}
}

// WithAddress replaces the address.
func (b *RequestBuilder) WithAddress(addr model.Address) *RequestBuilder {
	b.req.Address = addr
	return b
}

// WithBuildingClass sets the building class.
func (b *RequestBuilder) WithBuildingClass(c model.BuildingClass) *RequestBuilder {
	b.req.BuildingClass = c
	return b
}

// WithLand sets land value per m² and plot area.
func (b *RequestBuilder) WithLand(perSquareMeter, area float64) *RequestBuilder {
	b.req.Bodenrichtwert = model.Float(perSquareMeter)
	b.req.Grundstuecksflaeche = model.Float(area)
	return b
}

// WithPurchasePrice sets the purchase price without closing costs.
func (b *RequestBuilder) WithPurchasePrice(price float64) *RequestBuilder {
	b.req.KaufpreisOhneNebenkosten = model.Float(price)
	return b
}

// WithMarketValue sets and activates the market value hint.
func (b *RequestBuilder) WithMarketValue(value float64) *RequestBuilder {
	b.req.Verkehrswert = model.Float(value)
	b.req.VerkehrswertAktiv = true
	return b
}

// WithProcedures switches the given procedures on.
func (b *RequestBuilder) WithProcedures(keys ...model.ProcedureKey) *RequestBuilder {
	for _, key := range keys {
		switch key {
		case model.ProcedureErtragswert:
			b.req.UseErtragswertverfahren = true
		case model.ProcedureUmgekehrtesErtragswert:
			b.req.UseUmgekehrtesErtragswertverfahren = true
		case model.ProcedureVergleichswert:
			b.req.UseVergleichswertverfahren = true
		}
	}
	return b
}

// Build returns a copy of the request.
func (b *RequestBuilder) Build() model.ValuationRequest {
	return b.req.Clone()
}

// ScenarioARequest is the income-approach request used across end-to-end tests.
func ScenarioARequest() model.ValuationRequest {
	return NewRequest().
		WithBuildingClass(model.BuildingClassEinfamilienhaus).
		WithLand(350, 500).
		WithProcedures(model.ProcedureErtragswert).
		Build()
}

// NewHistory returns a history store over fresh in-memory storage.
func NewHistory(t *testing.T, opts ...history.Option) *history.Store {
	t.Helper()
	kv := storage.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })
	return history.New(kv, opts...)
}
