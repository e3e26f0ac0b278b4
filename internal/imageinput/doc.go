// Package imageinput implements image-input assets: pictures imported from
// disk that feed the image inputs of graph instances.
//
// An imported picture is stored compressed, with its alpha channel split
// into a plane of its own, and prepared on demand into the compute-ready
// RGBA form image inputs hand to the renderer. Reimporting a source file
// re-applies the new picture to every instance consuming it.
package imageinput
