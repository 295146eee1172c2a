// Package form applies single-field edits to a valuation request. Every
// interactive surface routes its edits through Apply.
package form

import (
	"fmt"
	"sort"
)

// Field identifies one editable fact or toggle of a valuation request.
type Field int

// Editable fields.
const (
	FieldStrasse Field = iota
	FieldHausnummer
	FieldPLZ
	FieldOrt
	FieldBuildingClass
	FieldKaufpreisOhneNebenkosten
	FieldVerkehrswert
	FieldVerkehrswertAktiv
	FieldNebenkostenGesamt
	FieldDatumKaufvertrag
	FieldUrspruenglichesBaujahr
	FieldMiteigentumsanteilZaehler
	FieldMiteigentumsanteilNenner
	FieldFiktivesBaujahrBMF
	FieldFiktivesBaujahrImmoWertV
	FieldFiktiveBaujahreAktiv
	FieldLiegenschaftszins
	FieldLiegenschaftszinsAktiv
	FieldRestnutzungsdauer
	FieldReparaturInvestitionsbedarf
	FieldBodenrichtwert
	FieldGrundstuecksflaeche
	FieldUseErtragswertverfahren
	FieldUseUmgekehrtesErtragswertverfahren
	FieldUseVergleichswertverfahren

	fieldCount
)

// Kind describes how a field's text value is parsed.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindNumber
	KindInteger
	KindToggle
	KindDate
	KindBuildingClass
)

type fieldInfo struct {
	name  string
	label string
	kind  Kind
}

var fieldTable = [fieldCount]fieldInfo{
	FieldStrasse:                            {"strasse", "Straße", KindText},
	FieldHausnummer:                         {"hausnummer", "Hausnummer", KindText},
	FieldPLZ:                                {"plz", "PLZ", KindText},
	FieldOrt:                                {"ort", "Ort", KindText},
	FieldBuildingClass:                      {"buildingClass", "Gebäudeklasse", KindBuildingClass},
	FieldKaufpreisOhneNebenkosten:           {"kaufpreisOhneNebenkosten", "Kaufpreis ohne Nebenkosten (EUR)", KindNumber},
	FieldVerkehrswert:                       {"verkehrswert", "Verkehrswert (EUR)", KindNumber},
	FieldVerkehrswertAktiv:                  {"verkehrswertAktiv", "Verkehrswert verwenden", KindToggle},
	FieldNebenkostenGesamt:                  {"nebenkostenGesamt", "Nebenkosten gesamt (EUR)", KindNumber},
	FieldDatumKaufvertrag:                   {"datumKaufvertrag", "Datum Kaufvertrag (JJJJ-MM-TT)", KindDate},
	FieldUrspruenglichesBaujahr:             {"urspruenglichesBaujahr", "Ursprüngliches Baujahr", KindInteger},
	FieldMiteigentumsanteilZaehler:          {"miteigentumsanteilZaehler", "Miteigentumsanteil Zähler", KindInteger},
	FieldMiteigentumsanteilNenner:           {"miteigentumsanteilNenner", "Miteigentumsanteil Nenner", KindInteger},
	FieldFiktivesBaujahrBMF:                 {"fiktivesBaujahrBMF", "Fiktives Baujahr (BMF)", KindInteger},
	FieldFiktivesBaujahrImmoWertV:           {"fiktivesBaujahrImmoWertV", "Fiktives Baujahr (ImmoWertV)", KindInteger},
	FieldFiktiveBaujahreAktiv:               {"fiktiveBaujahreAktiv", "Fiktive Baujahre verwenden", KindToggle},
	FieldLiegenschaftszins:                  {"liegenschaftszins", "Liegenschaftszins (%)", KindNumber},
	FieldLiegenschaftszinsAktiv:             {"liegenschaftszinsAktiv", "Liegenschaftszins verwenden", KindToggle},
	FieldRestnutzungsdauer:                  {"restnutzungsdauer", "Restnutzungsdauer (Jahre)", KindNumber},
	FieldReparaturInvestitionsbedarf:        {"reparaturInvestitionsbedarf", "Reparatur- und Investitionsbedarf (EUR)", KindNumber},
	FieldBodenrichtwert:                     {"bodenrichtwert", "Bodenrichtwert (EUR/m²)", KindNumber},
	FieldGrundstuecksflaeche:                {"grundstuecksflaeche", "Grundstücksfläche (m²)", KindNumber},
	FieldUseErtragswertverfahren:            {"useErtragswertverfahren", "Ertragswertverfahren", KindToggle},
	FieldUseUmgekehrtesErtragswertverfahren: {"useUmgekehrtesErtragswertverfahren", "Umgekehrtes Ertragswertverfahren", KindToggle},
	FieldUseVergleichswertverfahren:         {"useVergleichswertverfahren", "Vergleichswertverfahren", KindToggle},
}

// Fields returns every editable field in display order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Name is the wire name of the field, as used in JSON input and --set flags.
func (f Field) Name() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldTable[f].name
}

func (f Field) String() string {
	return f.Name()
}

// Label is the German display label.
func (f Field) Label() string {
	if !f.Valid() {
		return f.Name()
	}
	return fieldTable[f].label
}

// Kind reports how the field parses text input.
func (f Field) Kind() Kind {
	if !f.Valid() {
		return KindText
	}
	return fieldTable[f].kind
}

// ParseField looks a field up by its wire name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields() {
		if fieldTable[f].name == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// FieldNames lists every wire name, sorted.
func FieldNames() []string {
	names := make([]string, 0, fieldCount)
	for _, f := range Fields() {
		names = append(names, fieldTable[f].name)
	}
	sort.Strings(names)
	return names
}
