package graph

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Widget is the editing hint of an input.
type Widget int

const (
	WidgetNone Widget = iota
	WidgetSlider
	WidgetAngle
	WidgetColor
	WidgetCombobox
	WidgetToggle
	WidgetOutputSize
	WidgetImage
)

var widgetNames = map[string]Widget{
	"":             WidgetNone,
	"slider":       WidgetSlider,
	"angle":        WidgetAngle,
	"color":        WidgetColor,
	"combobox":     WidgetCombobox,
	"togglebutton": WidgetToggle,
	"outputsize":   WidgetOutputSize,
	"image":        WidgetImage,
}

// ParseWidget maps the manifest spelling of a widget.
func ParseWidget(s string) (Widget, error) {
	w, ok := widgetNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return WidgetNone, fmt.Errorf("unknown widget %q", s)
	}
	return w, nil
}

// Reserved input identifiers.
const (
	OutputSizeIdentifier = "$outputsize"
	RandomSeedIdentifier = "$randomseed"
)

// InputDesc is the static definition of a graph input.
type InputDesc struct {
	UID        uint32
	Identifier string
	Label      string
	Group      string
	Kind       value.Kind
	Widget     Widget

	// Min and Max bound numerical inputs when Clamped is set.
	Min     value.Value
	Max     value.Value
	Clamped bool
	Default value.Value
	// DefaultImage is the default source of an image input, usually nil.
	DefaultImage ImageSource

	// Heavy inputs have their default folded into the descriptor hash.
	Heavy bool
	// AlteredOutputs lists the output uids a change of this input dirties.
	AlteredOutputs []uint32
	// Items maps combobox values to their labels.
	Items map[int32]string
}

// IsNumerical reports whether the input holds a numerical value.
func (d *InputDesc) IsNumerical() bool { return d.Kind.IsNumerical() }

func (d *InputDesc) instantiate(owner *Instance) InputInstance {
	if d.Kind == value.Image {
		in := &ImageInput{desc: d, owner: owner}
		in.Source = d.DefaultImage
		return in
	}
	return &NumericalInput{desc: d, owner: owner, Value: d.Default}
}

// Channel is the material role of an output.
type Channel string

const (
	ChannelUnknown   Channel = "unknown"
	ChannelBaseColor Channel = "basecolor"
	ChannelNormal    Channel = "normal"
	ChannelRoughness Channel = "roughness"
	ChannelMetallic  Channel = "metallic"
	ChannelHeight    Channel = "height"
	ChannelAO        Channel = "ao"
	ChannelEmissive  Channel = "emissive"
	ChannelSpecular  Channel = "specular"
	ChannelOpacity   Channel = "opacity"
)

// ParseChannel maps the manifest spelling of a channel; unknown spellings
// map to ChannelUnknown.
func ParseChannel(s string) Channel {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case ChannelBaseColor, ChannelNormal, ChannelRoughness, ChannelMetallic,
		ChannelHeight, ChannelAO, ChannelEmissive, ChannelSpecular, ChannelOpacity:
		return c
	}
	return ChannelUnknown
}

// OutputDesc is the static definition of a graph output.
type OutputDesc struct {
	UID        uint32
	Identifier string
	Label      string
	Format     assets.PixelFormat
	Channel    Channel
}

func (d *OutputDesc) instantiate(c *Container) *OutputInstance {
	return &OutputInstance{
		UID:       d.UID,
		Format:    d.Format,
		Desc:      d,
		Container: c,
		Texture:   assets.NewSlot(nil),
	}
}
