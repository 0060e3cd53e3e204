package form

import (
	"strconv"

	"github.com/leofalp/intake/core/extract"
)

// FormData is the flat form document: the values exactly as the form fields
// display them.
type FormData struct {
	Name        string `json:"name"`
	IDNumber    string `json:"id_number"`
	Age         string `json:"age"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
	Consent     bool   `json:"consent"`
	Smoke       bool   `json:"smoke"`
	Allergy     string `json:"allergy"`
	Comments    string `json:"comments"`
}

// FromRecord maps an extracted record onto form fields. Numbers become their
// decimal text and gender is capitalized to match the form's options.
func FromRecord(r *extract.Record) FormData {
	if r == nil {
		return FormData{}
	}
	return FormData{
		Name:        r.Name,
		IDNumber:    strconv.FormatInt(r.IDNumber, 10),
		Age:         strconv.Itoa(r.Age),
		Gender:      r.Gender.Title(),
		Nationality: r.Nationality,
		Consent:     r.Consent,
		Smoke:       r.Smoke,
		Allergy:     r.Allergy,
		Comments:    r.Comments,
	}
}
