// Package render is the render queue between graph instances and a compute
// backend.
//
// Instances are pushed onto the queue, then Run turns the queue into a run:
// one job per instance, dispatched to the Backend. A run moves through
// Queued, Dispatched and then Completed, Failed or Cancelled. Synchronous
// runs block and deliver their results before returning. Asynchronous runs
// return a RunID right away; their results are delivered by Tick, which the
// owner goroutine calls from its loop, so callbacks always run on the owner.
//
// The renderer plugs a states observer into every pushed instance. When an
// instance is destroyed the observer drops it from the queue and any result
// computed for it is discarded instead of being written to freed outputs.
package render
