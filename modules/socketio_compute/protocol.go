package socketio_compute

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Event names of the render protocol.
const (
	EventRender     = "render"
	EventResult     = "render_result"
	EventClearCache = "clear_cache"
	EventCancel     = "cancel"
)

type imagePayload struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels string `json:"pixels"`
}

type inputPayload struct {
	UID        uint32        `json:"uid"`
	Identifier string        `json:"identifier"`
	Type       string        `json:"type"`
	Value      []float64     `json:"value,omitempty"`
	Image      *imagePayload `json:"image,omitempty"`
}

type outputPayload struct {
	UID    uint32 `json:"uid"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels string `json:"pixels,omitempty"`
}

type requestPayload struct {
	RequestID string          `json:"request_id"`
	Graph     string          `json:"graph"`
	LinkData  string          `json:"link_data"`
	HeavyHash string          `json:"heavy_hash"`
	Inputs    []inputPayload  `json:"inputs"`
	Outputs   []outputPayload `json:"outputs"`
}

type replyPayload struct {
	RequestID string          `json:"request_id"`
	Error     string          `json:"error,omitempty"`
	Outputs   []outputPayload `json:"outputs"`
}

func encodeJob(requestID string, job render.Job) requestPayload {
	req := requestPayload{
		RequestID: requestID,
		Graph:     job.GraphURL,
		LinkData:  base64.StdEncoding.EncodeToString(job.LinkData),
		HeavyHash: job.HeavyHash,
	}
	for _, in := range job.Inputs {
		p := inputPayload{UID: in.UID, Identifier: in.Identifier, Type: in.Kind.String()}
		if in.Kind == value.Image {
			if in.Image != nil {
				p.Image = &imagePayload{
					Width:  in.Image.Rect.Dx(),
					Height: in.Image.Rect.Dy(),
					Pixels: base64.StdEncoding.EncodeToString(in.Image.Pix),
				}
			}
		} else {
			for c := 0; c < in.Value.Len(); c++ {
				p.Value = append(p.Value, in.Value.Float(c))
			}
		}
		req.Inputs = append(req.Inputs, p)
	}
	for _, out := range job.Outputs {
		req.Outputs = append(req.Outputs, outputPayload{
			UID: out.UID, Format: out.Format.String(), Width: out.Width, Height: out.Height,
		})
	}
	return req
}

// decodeReply accepts whatever the socket.io parser produced for a JSON
// object: a map, a string or raw bytes.
func decodeReply(data any) (replyPayload, error) {
	var raw []byte
	switch d := data.(type) {
	case []byte:
		raw = d
	case string:
		raw = []byte(d)
	default:
		var err error
		if raw, err = json.Marshal(d); err != nil {
			return replyPayload{}, err
		}
	}
	var reply replyPayload
	if err := json.Unmarshal(raw, &reply); err != nil {
		return replyPayload{}, fmt.Errorf("malformed render reply: %w", err)
	}
	return reply, nil
}

func decodeOutput(job render.Job, out outputPayload) (render.Result, error) {
	format, err := assets.ParseFormat(out.Format)
	if err != nil {
		return render.Result{}, err
	}
	pixels, err := base64.StdEncoding.DecodeString(out.Pixels)
	if err != nil {
		return render.Result{}, fmt.Errorf("output %d: %w", out.UID, err)
	}
	if want := out.Width * out.Height * format.BytesPerPixel(); len(pixels) != want {
		return render.Result{}, fmt.Errorf("output %d: got %d bytes, want %d", out.UID, len(pixels), want)
	}
	return render.Result{
		InstanceID: job.InstanceID,
		OutputUID:  out.UID,
		Format:     format,
		Width:      out.Width,
		Height:     out.Height,
		Pixels:     pixels,
	}, nil
}
