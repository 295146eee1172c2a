// Package report renders stored valuations as Markdown documents, either for
// one procedure or for all three combined.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Veraticus/immowert/internal/format"
	"github.com/Veraticus/immowert/internal/model"
	"github.com/Veraticus/immowert/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Footer closes every report.
const Footer = "Erstellt mit Immobilienbewertungs-App (automatisierte Berechnung)"

// Request selects what to render. An empty Procedure renders the combined report.
type Request struct {
	Created   time.Time
	Procedure model.ProcedureKey
	Entry     model.HistoryEntry
}

// Renderer turns a stored valuation into a document.
type Renderer interface {
	Render(w io.Writer, req Request) error
	Extension() string
}

// MarkdownRenderer renders Markdown.
type MarkdownRenderer struct {
	templates *template.Template
}

var _ Renderer = (*MarkdownRenderer)(nil)

// NewMarkdownRenderer parses the embedded templates.
func NewMarkdownRenderer() (*MarkdownRenderer, error) {
	funcs := template.FuncMap{
		"inc":    func(i int) int { return i + 1 },
		"footer": func() string { return Footer },
	}
	tmpl, err := template.New("report").Funcs(funcs).Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report templates: %w", err)
	}
	return &MarkdownRenderer{templates: tmpl}, nil
}

// Extension returns the file extension including the dot.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Row is one labelled input fact.
type Row struct {
	Label string
	Value string
}

type procedureView struct {
	Name     string
	Result   string
	Note     string
	Steps    []string
	Feasible bool
}

type documentView struct {
	Procedure  *procedureView
	Title      string
	Created    string
	Address    string
	Inputs     []Row
	Procedures []procedureView
}

// Render writes the report for req.
func (r *MarkdownRenderer) Render(w io.Writer, req Request) error {
	created := req.Created
	if created.IsZero() {
		created = time.Now()
	}

	view := documentView{
		Created: format.Date(created),
		Address: req.Entry.Address.String(),
		Inputs:  Inputs(req.Entry.InputSnapshot),
	}

	name := "combined.md.tmpl"
	if req.Procedure != "" {
		outcome, ok := req.Entry.Results.Outcome(req.Procedure)
		if !ok {
			return fmt.Errorf("unknown procedure %q", req.Procedure)
		}
		pv := newProcedureView(req.Procedure, outcome)
		view.Title = pv.Name
		view.Procedure = &pv
		name = "procedure.md.tmpl"
	} else {
		for _, key := range model.ProcedureKeys() {
			outcome, _ := req.Entry.Results.Outcome(key)
			view.Procedures = append(view.Procedures, newProcedureView(key, outcome))
		}
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err := w.Write(collapseBlankLines(buf.Bytes()))
	return err
}

func newProcedureView(key model.ProcedureKey, outcome model.ProcedureOutcome) procedureView {
	pv := procedureView{
		Name:     key.Name(),
		Steps:    outcome.Rechenweg,
		Note:     outcome.Hinweis,
		Feasible: outcome.Durchfuehrbar && outcome.Ergebnis != nil,
	}
	if pv.Feasible {
		pv.Result = format.Value(*outcome.Ergebnis, outcome.Einheit)
	}
	return pv
}

// Inputs lists the facts present in req as labelled, German-formatted rows.
// Toggle-gated facts appear only when their toggle is on.
func Inputs(req model.ValuationRequest) []Row {
	var rows []Row
	add := func(label, value string) {
		rows = append(rows, Row{Label: label, Value: value})
	}

	if req.BuildingClass != "" {
		add("Gebäudeklasse", string(req.BuildingClass))
	}
	if v := req.KaufpreisOhneNebenkosten; v != nil {
		add("Kaufpreis ohne NK", format.Currency(*v))
	}
	if v := req.Verkehrswert; v != nil && req.VerkehrswertAktiv {
		add("Verkehrswert", format.Currency(*v))
	}
	if v := req.NebenkostenGesamt; v != nil {
		add("Nebenkosten", format.Currency(*v))
	}
	if v := req.DatumKaufvertrag; v != nil {
		if t, err := schema.ParseDate(*v); err == nil {
			add("Datum Kaufvertrag", format.Date(t))
		} else {
			add("Datum Kaufvertrag", *v)
		}
	}
	if v := req.UrspruenglichesBaujahr; v != nil {
		add("Ursprüngliches Baujahr", strconv.Itoa(*v))
	}
	if v := req.MiteigentumsanteilZaehler; v != nil && req.MiteigentumsanteilNenner != nil {
		add("Miteigentumsanteil", fmt.Sprintf("%d/%d", *v, *req.MiteigentumsanteilNenner))
	}
	if req.FiktiveBaujahreAktiv {
		if v := req.FiktivesBaujahrBMF; v != nil {
			add("Fiktives Baujahr (BMF)", strconv.Itoa(*v))
		}
		if v := req.FiktivesBaujahrImmoWertV; v != nil {
			add("Fiktives Baujahr (ImmoWertV)", strconv.Itoa(*v))
		}
	}
	if v := req.Restnutzungsdauer; v != nil {
		add("Restnutzungsdauer", format.Locale(*v)+" Jahre")
	}
	if v := req.Liegenschaftszins; v != nil && req.LiegenschaftszinsAktiv {
		add("Liegenschaftszins", format.Locale(*v)+"%")
	}
	if v := req.Bodenrichtwert; v != nil {
		add("Bodenrichtwert", format.Locale(*v)+" EUR/m²")
	}
	if v := req.Grundstuecksflaeche; v != nil {
		add("Grundstücksfläche", format.Locale(*v)+" m²")
	}
	if v := req.ReparaturInvestitionsbedarf; v != nil {
		add("Reparatur-/Investitionsbedarf", format.Currency(*v))
	}
	return rows
}

// FileName builds the download name for a report. Address parts never
// contribute path separators or parent references, so the name always stays
// inside the directory it is written to.
func FileName(entry model.HistoryEntry, key model.ProcedureKey, ext string) string {
	plz, ort := fileSafe(entry.Address.PLZ), fileSafe(entry.Address.Ort)
	if key == "" {
		return fmt.Sprintf("Immobilienbewertung_%s_%s_Gesamt%s", plz, ort, ext)
	}
	name := strings.Join(strings.Fields(key.Name()), "_")
	return fmt.Sprintf("%s_%s_%s%s", name, plz, ort, ext)
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", "..", "_", "\x00", "_")

func fileSafe(s string) string {
	return strings.Join(strings.Fields(unsafeName.Replace(s)), "_")
}

func collapseBlankLines(b []byte) []byte {
	for bytes.Contains(b, []byte("\n\n\n")) {
		b = bytes.ReplaceAll(b, []byte("\n\n\n"), []byte("\n\n"))
	}
	return b
}
