// Package form adapts extraction results to the intake form shown to the user.
//
// [Service.Autofill] runs one extraction per session at a time and maps the
// result into [FormData] only once the extraction has finished, so a form is
// either filled completely or left untouched. [Service.Save] hands the form
// to a [Store].
package form
