// Package testutil holds helpers shared by package tests: a deterministic
// compute backend, a thread-safe log buffer, package manifests and a
// temporary workspace writer.
package testutil
