// Package onboarding assembles the wizards of the tax return onboarding:
// personal info, address, spouse, filing status, dependents and
// miscellaneous questions. Flows are prefilled from the backend and submit
// through it.
//
// Besides the built-in flows, a Catalog accepts flow definitions read from
// YAML files or derived from an OpenAPI request body.
package onboarding
