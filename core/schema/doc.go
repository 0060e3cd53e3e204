// Package schema defines immutable, versioned record contracts and validates
// normalized records against them.
//
// A [Schema] is a value passed explicitly to [Validate]; several versions can
// coexist in the same process. [IntakeV1] is the patient intake contract.
package schema
