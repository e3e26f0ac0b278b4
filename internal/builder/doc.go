/*
Package builder turns a decoded package manifest (defined in the 'config'
package) into a live *graph.Package whose descriptors are ready to be
instantiated.

Construction is a multi-phase process:

 1. Descriptor Creation: one *graph.Desc per manifest graph, attached to a new
    package that carries the manifest's link data.

 2. Input and Output Translation: manifest types, widgets, formats and
    channels are parsed; cty defaults and ranges become typed values. The
    reserved $outputsize input defaults to 2^8 pixels per side when the
    manifest leaves it unset.

 3. Validation and Commit: altered-output lists must name outputs of the same
    graph. The sorted uid indices of every descriptor are then committed, after
    which the descriptor lists must not change.
*/
package builder
