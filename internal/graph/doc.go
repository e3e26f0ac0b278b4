// Package graph is the descriptor/instance object model of procedural
// material packages.
//
// A Package owns Graph Descriptors (Desc). A Desc is the static template of a
// graph: ordered input and output descriptors plus the set of live instances
// subscribed to it. Instantiating a Desc into a Container yields an Instance,
// which owns its own input and output instances cloned from the descriptor
// defaults.
//
// Back-references (Instance to Desc, Output to Container) are plain pointers
// that are explicitly nilled on detach. Render-state observers are told about
// instance destruction by instance id so they can purge anything they still
// hold for it.
//
// Contract violations such as subscribing an instance twice panic; expected
// runtime failures are returned as errors.
package graph
