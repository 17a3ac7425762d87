// Package domain contains the core entities flowing through the segfeed
// pipeline.
//
// It has no dependencies on infrastructure concerns (file system, image
// codecs, logging) beyond the tensor layout of the final Batch.
//
// # Entities
//
//   - [SampleRef]: identifies one dataset entry (image path + target path)
//   - [Image]: a decoded RGB image as dense float32 planes
//   - [LabelMap]: a decoded target as dense 8-bit class ids
//   - [Sample]: an image/target pair in flight between pipeline stages
//   - [Batch]: stacked tensors handed to the consumer
//
// A Sample is owned by exactly one goroutine at a time: the worker that
// decoded it, then the assembler, then the Batch that copied it. Nothing is
// shared, so none of these types carry locks.
package domain
