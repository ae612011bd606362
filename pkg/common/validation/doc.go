// Package validation provides common validation utilities for configuration
// parameters across the ratebucket module.
//
// Constructors and configuration loaders use these helpers so that every
// rejected value surfaces as a *errors.ValidationError with a hint.
package validation
