// Package dataset enumerates image/target pairs under a dataset root and
// provides the iteration strategies the worker pool draws samples from.
//
// Enumeration happens once per Scan; iterators only hand out references.
// All iterators are safe for concurrent Next calls, which is how multiple
// workers claim samples without duplication.
package dataset
