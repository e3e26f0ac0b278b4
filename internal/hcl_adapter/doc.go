// Package hcl_adapter provides the HCL implementation of config.Loader. It
// parses project files and package manifests, evaluates literal expressions
// into cty values and translates everything into the format-agnostic model of
// the config package.
package hcl_adapter
