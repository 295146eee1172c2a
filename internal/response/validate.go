package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
)

// ValidateLandValue checks a candidate object against the land-value contract.
func ValidateLandValue(candidate string) (model.LandValueResult, error) {
	obj, err := decodeObject(candidate)
	if err != nil {
		return model.LandValueResult{}, err
	}

	value, err := requireNumber(obj, "", "bodenrichtwert")
	if err != nil {
		return model.LandValueResult{}, err
	}
	if value < 0 {
		return model.LandValueResult{}, &common.SchemaError{
			Path:     "bodenrichtwert",
			Expected: "number >= 0",
			Actual:   strconv.FormatFloat(value, 'g', -1, 64),
		}
	}

	result := model.LandValueResult{Bodenrichtwert: value}
	for _, field := range []struct {
		dst  *string
		name string
	}{
		{&result.Quelle, "quelle"},
		{&result.Region, "region"},
		{&result.Hinweise, "hinweise"},
	} {
		s, err := requireString(obj, "", field.name)
		if err != nil {
			return model.LandValueResult{}, err
		}
		*field.dst = s
	}

	return result, nil
}

// ValidateValuation checks a candidate object against the valuation contract.
// All three procedures must be present; a partial result is never returned.
func ValidateValuation(candidate string) (model.ValuationResult, error) {
	obj, err := decodeObject(candidate)
	if err != nil {
		return model.ValuationResult{}, err
	}

	var result model.ValuationResult
	for _, key := range model.ProcedureKeys() {
		outcome, err := validateOutcome(obj, key)
		if err != nil {
			return model.ValuationResult{}, err
		}
		switch key {
		case model.ProcedureErtragswert:
			result.Ertragswertverfahren = outcome
		case model.ProcedureUmgekehrtesErtragswert:
			result.UmgekehrtesErtragswertverfahren = outcome
		case model.ProcedureVergleichswert:
			result.Vergleichswertverfahren = outcome
		}
	}

	return result, nil
}

// DecodeLandValue extracts and validates a land-value reply.
func DecodeLandValue(raw string) (model.LandValueResult, error) {
	candidate, err := Extract(raw)
	if err != nil {
		return model.LandValueResult{}, err
	}
	return ValidateLandValue(candidate)
}

// DecodeValuation extracts and validates a valuation reply.
func DecodeValuation(raw string) (model.ValuationResult, error) {
	candidate, err := Extract(raw)
	if err != nil {
		return model.ValuationResult{}, err
	}
	return ValidateValuation(candidate)
}

func validateOutcome(root map[string]any, key model.ProcedureKey) (model.ProcedureOutcome, error) {
	path := string(key)
	raw, ok := root[path]
	if !ok {
		return model.ProcedureOutcome{}, &common.SchemaError{Path: path, Expected: "object", Actual: "missing"}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.ProcedureOutcome{}, &common.SchemaError{Path: path, Expected: "object", Actual: kindOf(raw)}
	}

	var outcome model.ProcedureOutcome

	feasible, err := requireBool(obj, path, "durchfuehrbar")
	if err != nil {
		return model.ProcedureOutcome{}, err
	}
	outcome.Durchfuehrbar = feasible

	steps, err := requireStrings(obj, path, "rechenweg")
	if err != nil {
		return model.ProcedureOutcome{}, err
	}
	outcome.Rechenweg = steps

	unit, err := requireString(obj, path, "einheit")
	if err != nil {
		return model.ProcedureOutcome{}, err
	}
	outcome.Einheit = model.Unit(unit)
	if !outcome.Einheit.Valid() {
		return model.ProcedureOutcome{}, &common.SchemaError{
			Path:     path + ".einheit",
			Expected: fmt.Sprintf("%q or %q", model.UnitEUR, model.UnitEURPerSquareMeter),
			Actual:   strconv.Quote(unit),
		}
	}

	resultPath := path + ".ergebnis"
	rawResult, present := obj["ergebnis"]
	switch {
	case !present:
		return model.ProcedureOutcome{}, &common.SchemaError{Path: resultPath, Expected: "number or null", Actual: "missing"}
	case feasible && rawResult == nil:
		return model.ProcedureOutcome{}, &common.SchemaError{Path: resultPath, Expected: "number when durchfuehrbar is true", Actual: "null"}
	case !feasible && rawResult != nil:
		return model.ProcedureOutcome{}, &common.SchemaError{Path: resultPath, Expected: "null when durchfuehrbar is false", Actual: kindOf(rawResult)}
	case feasible:
		value, err := toFloat(rawResult, resultPath)
		if err != nil {
			return model.ProcedureOutcome{}, err
		}
		if expected := key.ExpectedUnit(); outcome.Einheit != expected {
			return model.ProcedureOutcome{}, &common.SchemaError{
				Path:     path + ".einheit",
				Expected: strconv.Quote(string(expected)),
				Actual:   strconv.Quote(unit),
			}
		}
		outcome.Ergebnis = &value
	}

	if rawNote, ok := obj["hinweis"]; ok && rawNote != nil {
		note, ok := rawNote.(string)
		if !ok {
			return model.ProcedureOutcome{}, &common.SchemaError{Path: path + ".hinweis", Expected: "string", Actual: kindOf(rawNote)}
		}
		outcome.Hinweis = note
	}

	return outcome, nil
}

func decodeObject(candidate string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &common.SchemaError{Path: "$", Expected: "JSON object", Actual: fmt.Sprintf("invalid JSON (%v)", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &common.SchemaError{Path: "$", Expected: "a single JSON object", Actual: "trailing data"}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &common.SchemaError{Path: "$", Expected: "object", Actual: kindOf(v)}
	}
	return obj, nil
}

func requireBool(obj map[string]any, parent, name string) (bool, error) {
	path := join(parent, name)
	v, ok := obj[name]
	if !ok {
		return false, &common.SchemaError{Path: path, Expected: "boolean", Actual: "missing"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &common.SchemaError{Path: path, Expected: "boolean", Actual: kindOf(v)}
	}
	return b, nil
}

func requireString(obj map[string]any, parent, name string) (string, error) {
	path := join(parent, name)
	v, ok := obj[name]
	if !ok {
		return "", &common.SchemaError{Path: path, Expected: "string", Actual: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &common.SchemaError{Path: path, Expected: "string", Actual: kindOf(v)}
	}
	return s, nil
}

func requireNumber(obj map[string]any, parent, name string) (float64, error) {
	path := join(parent, name)
	v, ok := obj[name]
	if !ok {
		return 0, &common.SchemaError{Path: path, Expected: "number", Actual: "missing"}
	}
	return toFloat(v, path)
}

func requireStrings(obj map[string]any, parent, name string) ([]string, error) {
	path := join(parent, name)
	v, ok := obj[name]
	if !ok {
		return nil, &common.SchemaError{Path: path, Expected: "array of strings", Actual: "missing"}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &common.SchemaError{Path: path, Expected: "array of strings", Actual: kindOf(v)}
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &common.SchemaError{Path: fmt.Sprintf("%s[%d]", path, i), Expected: "string", Actual: kindOf(item)}
		}
		out = append(out, s)
	}
	return out, nil
}

func toFloat(v any, path string) (float64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, &common.SchemaError{Path: path, Expected: "number", Actual: kindOf(v)}
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &common.SchemaError{Path: path, Expected: "finite number", Actual: n.String()}
	}
	return f, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
