// Package app wires the texture pipeline together: it loads a project,
// imports its images and packages, renders the graph instances and, in watch
// mode, keeps them in sync with their source files from a single owner loop.
package app
