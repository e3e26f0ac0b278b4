// Package factory imports material packages and creates graph instances from
// them: the default "<label>_INST" instance of an interactive import, the
// instances a project file declares, and duplicates of existing instances.
package factory
