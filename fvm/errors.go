package fvm

import "errors"

// Sentinel errors for discretization and mechanism data builds. All
// errors abort the build; partial outputs are never returned.
var (
	// ErrEmptyRegion indicates a paint whose region covers zero membrane
	// area on its cell.
	ErrEmptyRegion = errors.New("fvm: paint covers empty region")

	// ErrUnknownIon indicates a mechanism reading or writing an ion that
	// the global ion species table does not declare.
	ErrUnknownIon = errors.New("fvm: unknown ion")

	// ErrIonValenceMismatch indicates a mechanism whose declared ion
	// valence disagrees with the global ion species table.
	ErrIonValenceMismatch = errors.New("fvm: ion valence mismatch")

	// ErrRevPotMismatch indicates an inconsistent reversal-potential
	// method assignment: a multi-ion writer not assigned to all the ions
	// it writes, conflicting assignments for the same mechanism, or a
	// method that is not a reversal-potential mechanism.
	ErrRevPotMismatch = errors.New("fvm: reversal potential method mismatch")
)
