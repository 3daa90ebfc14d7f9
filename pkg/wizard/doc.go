// Package wizard implements the multi-step form state machine: steps that
// validate their own fields, and a controller that tracks the active step,
// merges collected values and hands the complete set to a Submitter on the
// last step. Rendering is left to the renderers packages, which consume the
// Snapshot a controller produces.
package wizard
