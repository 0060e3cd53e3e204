package httpapi

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/leofalp/intake/core/form"
)

var (
	policyOnce   sync.Once
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return strictPolicy, ugcPolicy
}

// plainText strips all markup from s and returns the remaining text unescaped.
func plainText(s string) string {
	strict, _ := policies()
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// sanitizeHTML removes scripts, styles and event handlers from an HTML source
// while keeping the structure the markdown conversion relies on.
func sanitizeHTML(s string) string {
	_, ugc := policies()
	return ugc.Sanitize(s)
}

// sanitizeForm strips markup from every text field of a submitted form.
func sanitizeForm(data form.FormData) form.FormData {
	data.Name = plainText(data.Name)
	data.IDNumber = plainText(data.IDNumber)
	data.Age = plainText(data.Age)
	data.Gender = plainText(data.Gender)
	data.Nationality = plainText(data.Nationality)
	data.Allergy = plainText(data.Allergy)
	data.Comments = plainText(data.Comments)
	return data
}
