// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// Address identifies a property. All four fields are required and PLZ is a
// five digit German postal code.
type Address struct {
	Strasse    string `json:"strasse" validate:"notblank"`
	Hausnummer string `json:"hausnummer" validate:"notblank"`
	PLZ        string `json:"plz" validate:"plz"`
	Ort        string `json:"ort" validate:"notblank"`
}

// String formats the address the way it appears in prompts and reports.
func (a Address) String() string {
	return fmt.Sprintf("%s %s, %s %s", a.Strasse, a.Hausnummer, a.PLZ, a.Ort)
}

// IsZero reports whether no address field has been filled in.
func (a Address) IsZero() bool {
	return a == Address{}
}
