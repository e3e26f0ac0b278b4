package app

import (
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/modules/jpeg"
	"github.com/specialistvlad/texgraphgo/modules/localcompute"
	"github.com/specialistvlad/texgraphgo/modules/socketio_compute"
	"github.com/specialistvlad/texgraphgo/modules/tga"
)

// coreModules is the list of modules compiled into the texgraph binary.
var coreModules = []registry.Module{
	&jpeg.Module{},
	&tga.Module{},
	&localcompute.Module{},
	&socketio_compute.Module{},
}
