package render

import (
	"context"
	"image"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Backend evaluates graphs. Render may call emit from any goroutine, once
// per computed output, and must return when ctx is cancelled.
type Backend interface {
	Render(ctx context.Context, jobs []Job, emit func(Result)) error
	// ClearCache drops memoized intermediate results.
	ClearCache()
	// Flush waits for internal work to drain.
	Flush(ctx context.Context) error
	Close() error
}

// InputValue is the value of one input as the backend sees it.
type InputValue struct {
	UID        uint32
	Identifier string
	Kind       value.Kind
	Value      value.Value
	Image      *image.RGBA
}

// OutputRequest asks for one output to be computed.
type OutputRequest struct {
	UID    uint32
	Format assets.PixelFormat
	Width  int
	Height int
}

// Job is the work of one instance.
type Job struct {
	InstanceID uuid.UUID
	GraphURL   string
	LinkData   []byte
	HeavyHash  string
	Inputs     []InputValue
	Outputs    []OutputRequest
}

// Result is one computed output.
type Result struct {
	InstanceID uuid.UUID
	OutputUID  uint32
	Format     assets.PixelFormat
	Width      int
	Height     int
	Pixels     []byte
}

// NewJob captures the current state of inst. Dirty enabled outputs are
// requested; when none is dirty every enabled output is.
func NewJob(inst *graph.Instance) Job {
	desc := inst.Desc()
	j := Job{
		InstanceID: inst.ID(),
		GraphURL:   desc.URL,
		LinkData:   desc.Package().LinkData(),
		HeavyHash:  desc.DefaultHeavyInputHash(),
	}
	for _, in := range inst.Inputs {
		d := in.Desc()
		iv := InputValue{UID: d.UID, Identifier: d.Identifier, Kind: d.Kind}
		switch typed := in.(type) {
		case *graph.NumericalInput:
			iv.Value = typed.Value
		case *graph.ImageInput:
			iv.Image = typed.Prepared
		}
		j.Inputs = append(j.Inputs, iv)
	}

	w, h := inst.OutputSize()
	outputs := inst.DirtyOutputs()
	if len(outputs) == 0 {
		for _, o := range inst.Outputs {
			if o.Enabled {
				outputs = append(outputs, o)
			}
		}
	}
	for _, o := range outputs {
		j.Outputs = append(j.Outputs, OutputRequest{UID: o.UID, Format: o.Format, Width: w, Height: h})
	}
	return j
}
