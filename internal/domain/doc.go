// Package domain contains the core entities and pure policies of the
// progress gallery: photos, the ordered collection, the before/after
// comparison selection, and the chooser session. Nothing here performs I/O.
package domain
