/*
Package assetpath provides a structured representation for asset object
paths, the stable names under which graph-instance containers, textures and
image inputs live in the asset store.

The canonical format is a slash-rooted sequence of segments,
e.g. `/Game/Materials/Wood/wood_INST`. The last segment is the object name,
the preceding ones form its package directory.
*/
package assetpath
