package graph

import (
	"image"

	"github.com/specialistvlad/texgraphgo/internal/value"
)

// ImageSource is an image asset that can feed image inputs.
type ImageSource interface {
	// FullName is the qualified asset name.
	FullName() string
	// Prepare returns the compute-ready form of the image.
	Prepare() (*image.RGBA, error)
}

// InputInstance is the live state of one graph input: either a
// *NumericalInput or an *ImageInput.
type InputInstance interface {
	UID() uint32
	Desc() *InputDesc
	Owner() *Instance
	IsNumerical() bool
	// ValueString is the display form of the current value.
	ValueString() string

	isInputInstance()
}

// NumericalInput holds a scalar or vector value.
type NumericalInput struct {
	desc  *InputDesc
	owner *Instance
	Value value.Value
}

func (in *NumericalInput) UID() uint32       { return in.desc.UID }
func (in *NumericalInput) Desc() *InputDesc  { return in.desc }
func (in *NumericalInput) Owner() *Instance  { return in.owner }
func (in *NumericalInput) IsNumerical() bool { return true }
func (in *NumericalInput) isInputInstance()  {}

func (in *NumericalInput) ValueString() string {
	if in.desc.Widget == WidgetCombobox && in.desc.Items != nil {
		if label, ok := in.desc.Items[in.Value.Int(0)]; ok {
			return label
		}
	}
	return in.Value.String()
}

// ImageInput holds a reference to an image asset and its prepared form.
type ImageInput struct {
	desc     *InputDesc
	owner    *Instance
	Source   ImageSource
	Prepared *image.RGBA
}

func (in *ImageInput) UID() uint32       { return in.desc.UID }
func (in *ImageInput) Desc() *InputDesc  { return in.desc }
func (in *ImageInput) Owner() *Instance  { return in.owner }
func (in *ImageInput) IsNumerical() bool { return false }
func (in *ImageInput) isInputInstance()  {}

func (in *ImageInput) ValueString() string {
	if in.Source == nil {
		return ""
	}
	return in.Source.FullName()
}

// setSource replaces the image and prepares it. The owner gets a pending
// image render unless an empty input is cleared again.
func (in *ImageInput) setSource(src ImageSource) error {
	prev := in.Source
	in.Source = src
	in.Prepared = nil
	if src == nil && prev == nil {
		return nil
	}
	in.owner.pendingImageRender = true
	if src == nil {
		return nil
	}
	img, err := src.Prepare()
	if err != nil {
		return err
	}
	in.Prepared = img
	return nil
}
