// Package prompt renders the system and user prompts sent to the remote
// reasoning service. Rendering is deterministic: the same input always yields
// the same text.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/immowert/internal/format"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Operation is one of the two kinds of remote call.
type Operation int

// Supported operations.
const (
	OpLandValueLookup Operation = iota + 1
	OpMultiProcedureValuation
)

func (o Operation) String() string {
	switch o {
	case OpLandValueLookup:
		return "land_value_lookup"
	case OpMultiProcedureValuation:
		return "multi_procedure_valuation"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// CallOptions returns the invocation settings every call of this operation uses.
func (o Operation) CallOptions() llm.CallOptions {
	switch o {
	case OpLandValueLookup:
		return llm.CallOptions{Operation: o.String(), Temperature: 0.3, MaxTokens: 2048, WebSearch: true}
	default:
		return llm.CallOptions{Operation: o.String(), Temperature: 0.3, MaxTokens: 4096}
	}
}

// Prompt is a rendered system/user pair.
type Prompt struct {
	System    string
	User      string
	Operation Operation
}

// Options returns the call options for the prompt's operation.
func (p Prompt) Options() llm.CallOptions {
	return p.Operation.CallOptions()
}

// Portal is an official land-value information system listed in the
// land-value system prompt.
type Portal struct {
	Name string
	URL  string
}

// Portals lists the state portals named in the land-value lookup prompt.
var Portals = []Portal{
	{Name: "BORIS Bayern", URL: "https://www.bodenrichtwerte-boris.de/"},
	{Name: "BORIS Hessen", URL: "https://gds.hessen.de/GEODOSTOR/"},
	{Name: "BORIS NRW", URL: "https://www.boris.nrw.de/"},
	{Name: "BORIS Baden-Württemberg", URL: "https://www.gutachterausschuesse-bw.de/"},
	{Name: "BORIS Berlin", URL: "https://fbinter.stadt-berlin.de/boris/"},
	{Name: "BORIS Hamburg", URL: "https://metropolregion.hamburg.de/boris-hh/"},
}

// Compiler renders prompts from embedded templates.
type Compiler struct {
	templates map[string]*template.Template
}

// NewCompiler parses the embedded templates.
func NewCompiler() (*Compiler, error) {
	c := &Compiler{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"locale": format.Locale,
	}

	for _, name := range []string{
		"land_value_system",
		"land_value_user",
		"valuation_system",
		"valuation_user",
	} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name+".tmpl").Funcs(funcMap).Option("missingkey=error").ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		c.templates[name] = tmpl
	}

	return c, nil
}

// Compile renders the prompt pair for op from a valuation request. For a
// land-value lookup only the address, building class and active market value
// hint are used.
func (c *Compiler) Compile(op Operation, req model.ValuationRequest) (Prompt, error) {
	switch op {
	case OpLandValueLookup:
		return c.CompileLandValue(req.LandValueQuery())
	case OpMultiProcedureValuation:
		return c.CompileValuation(req)
	default:
		return Prompt{}, fmt.Errorf("unknown operation %s", op)
	}
}

type landValueData struct {
	Address       string
	BuildingClass string
	Portals       []Portal
	Verkehrswert  float64
}

// CompileLandValue renders the land-value lookup prompt.
func (c *Compiler) CompileLandValue(q model.LandValueQuery) (Prompt, error) {
	data := landValueData{
		Address:       q.Address.String(),
		BuildingClass: string(q.BuildingClass),
		Portals:       Portals,
	}
	if q.Verkehrswert != nil && *q.Verkehrswert > 0 {
		data.Verkehrswert = *q.Verkehrswert
	}

	system, err := c.render("land_value_system", data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := c.render("land_value_user", data)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{System: system, User: user, Operation: OpLandValueLookup}, nil
}

type procedureData struct {
	Key       model.ProcedureKey
	Name      string
	Unit      model.Unit
	Requested bool
}

type valuationData struct {
	Facts      string
	Procedures []procedureData
}

// CompileValuation renders the multi-procedure valuation prompt.
func (c *Compiler) CompileValuation(req model.ValuationRequest) (Prompt, error) {
	facts, err := renderFacts(req)
	if err != nil {
		return Prompt{}, err
	}

	data := valuationData{Facts: facts}
	for _, key := range model.ProcedureKeys() {
		data.Procedures = append(data.Procedures, procedureData{
			Key:       key,
			Name:      key.Name(),
			Unit:      key.ExpectedUnit(),
			Requested: req.Uses(key),
		})
	}

	system, err := c.render("valuation_system", data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := c.render("valuation_user", data)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{System: system, User: user, Operation: OpMultiProcedureValuation}, nil
}

func (c *Compiler) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := c.templates[name].ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// renderFacts produces indented JSON of the facts present in req with keys
// in sorted order. Absent optional facts are left out entirely.
func renderFacts(req model.ValuationRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request facts: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var facts map[string]any
	if err := dec.Decode(&facts); err != nil {
		return "", fmt.Errorf("failed to decode request facts: %w", err)
	}
	if req.BuildingClass == "" {
		delete(facts, "buildingClass")
	}

	out, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode request facts: %w", err)
	}
	return string(out), nil
}
