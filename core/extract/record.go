package extract

import (
	"fmt"
	"strings"

	"github.com/leofalp/intake/core/schema"
)

// Gender is the normalized, lower-case gender of an intake record.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Title returns the gender with its first letter upper-cased, as shown in forms.
func (g Gender) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Record is the validated, typed output of one successful attempt.
type Record struct {
	Name        string `json:"name"`
	IDNumber    int64  `json:"id_number"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	Nationality string `json:"nationality"`
	Consent     bool   `json:"consent"`
	Smoke       bool   `json:"smoke"`
	Allergy     string `json:"allergy"`
	Comments    string `json:"comments"`
}

// RecordFromMap converts a normalized object that passed validation against
// [schema.IntakeV1] into a Record.
func RecordFromMap(object map[string]any) (*Record, error) {
	var (
		record Record
		err    error
	)

	record.Name, err = stringField(object, "name", true)
	if err != nil {
		return nil, err
	}
	record.IDNumber, err = integerField(object, "id_number")
	if err != nil {
		return nil, err
	}
	age, err := integerField(object, "age")
	if err != nil {
		return nil, err
	}
	record.Age = int(age)

	gender, err := stringField(object, "gender", true)
	if err != nil {
		return nil, err
	}
	record.Gender = Gender(gender)

	record.Nationality, err = stringField(object, "nationality", true)
	if err != nil {
		return nil, err
	}
	record.Consent, err = boolField(object, "consent")
	if err != nil {
		return nil, err
	}
	record.Smoke, err = boolField(object, "smoke")
	if err != nil {
		return nil, err
	}
	record.Allergy, err = stringField(object, "allergy", true)
	if err != nil {
		return nil, err
	}
	record.Comments, err = stringField(object, "comments", false)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func stringField(object map[string]any, key string, required bool) (string, error) {
	value, ok := object[key]
	if !ok {
		if required {
			return "", fmt.Errorf("extract: missing field %q", key)
		}
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("extract: field %q is %T, not a string", key, value)
	}
	return s, nil
}

func integerField(object map[string]any, key string) (int64, error) {
	n, ok := schema.AsInteger(object[key])
	if !ok {
		return 0, fmt.Errorf("extract: field %q is not an integer", key)
	}
	return n, nil
}

func boolField(object map[string]any, key string) (bool, error) {
	b, ok := object[key].(bool)
	if !ok {
		return false, fmt.Errorf("extract: field %q is not a boolean", key)
	}
	return b, nil
}
