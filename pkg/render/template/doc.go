// Package template defines the engine contract page renderers program
// against. The pongo subpackage provides the pongo2 implementation.
package template
