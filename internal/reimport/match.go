package reimport

import (
	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/factory"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// FindMatch returns the graph of pkg an instance backed up with url, label
// and enabled output uids should be rebuilt from: the graph with the same
// url, else the graph whose label matches the instance label without its
// "_INST" suffix, else the graph sharing the most output uids. It returns
// nil when nothing matches.
func FindMatch(pkg *graph.Package, url, label string, outputs map[uint32]string) *graph.Desc {
	if d := pkg.FindGraph(url); d != nil {
		return d
	}

	stripped := factory.StripInstanceSuffix(label)
	for _, d := range pkg.Graphs {
		if d.Label == stripped || assetpath.Sanitize(d.Label) == stripped {
			return d
		}
	}

	var best *graph.Desc
	bestOverlap := 0
	for _, d := range pkg.Graphs {
		overlap := 0
		for _, uid := range d.OutputUIDs() {
			if _, ok := outputs[uid]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = d, overlap
		}
	}
	return best
}
