// Package field defines the closed set of wizard field descriptors (text,
// date, social security number, select and binary choice) together with the
// validation rules and value conversions every renderer shares. Descriptors
// carry only the properties their kind needs; renderers switch on the
// concrete type and the compiler keeps the switch honest through the sealed
// Descriptor interface.
package field
