// Package transform applies pre-processing and augmentation to decoded
// samples.
//
// Augmentors mutate the sample in place and compose through Combined in
// configuration order. Each randomized augmentor owns a seeded RNG guarded
// by a mutex, so a fixed seed gives a reproducible stream of draws even
// with concurrent workers (the per-sample assignment of draws still depends
// on worker scheduling).
//
// Dimension problems are reported as errors; the pipeline drops the sample
// with a warning and continues.
package transform
