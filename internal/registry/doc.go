// Package registry is the glue between the application and its pluggable
// modules.
//
// Modules register compute backend factories under a name ("local",
// "socketio") and image decoders under a file extension. The application
// picks a backend by the name given in configuration and a decoder by the
// extension of the imported file. Registering the same name twice is a
// programming error and panics.
package registry
