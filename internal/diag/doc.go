// Package diag defines the diagnostic data model shared between the type
// engine and the surrounding type-checking pass.
//
// The type engine itself never emits diagnostics: compatibility and lookup
// queries return booleans and absent values, and the checking pass translates
// negative answers into Diagnostic records at concrete source locations. This
// package only supplies the vocabulary for that translation: Code (stable
// numeric identifiers per failure family), Severity, Diagnostic, a Sink
// contract for emission, and Bag, a bounded collecting sink with
// deterministic ordering and deduplication.
//
// Rendering, exit codes, and any user-facing presentation are out of scope
// and belong to the diagnostics consumer.
package diag
