// Package reimport rebuilds the instances of a package after its manifest
// changed on disk.
//
// Every loaded instance is backed up (input values as a preset, enabled
// outputs, image inputs), matched against the graphs of the newly built
// package, destroyed and instantiated again into the same container. Outputs
// with the same uid keep their texture objects; outputs the new graph no
// longer has are deleted. Instances no graph matches stay in their container,
// detached. The rebuilt set is rendered synchronously at the end.
package reimport
