package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Observer is render-side state that must forget an instance when it is
// destroyed.
type Observer interface {
	NotifyDeleted(id uuid.UUID)
}

// Instance is the mutable runtime state of a graph bound to one container.
type Instance struct {
	id         uuid.UUID
	packageURL string
	desc       *Desc
	container  *Container

	Inputs  []InputInstance
	Outputs []*OutputInstance

	frozen             bool
	pendingImageRender bool
	observers          []Observer
}

func newInstance(d *Desc, c *Container) *Instance {
	check(c != nil, "instantiate %q: nil container", d.URL)
	check(c.instance == nil, "container %s is already bound to instance %s", c.Path(), idOf(c.instance))

	inst := &Instance{
		id:         uuid.New(),
		packageURL: d.URL,
		desc:       d,
		container:  c,
	}
	for _, od := range d.Outputs {
		inst.Outputs = append(inst.Outputs, od.instantiate(c))
	}
	for _, id := range d.Inputs {
		inst.Inputs = append(inst.Inputs, id.instantiate(inst))
	}
	c.instance = inst
	c.pkg = d.parent
	return inst
}

func idOf(inst *Instance) string {
	if inst == nil {
		return "<nil>"
	}
	return inst.id.String()
}

// ID is the unique instance identifier, stable for the instance's life.
func (i *Instance) ID() uuid.UUID { return i.id }

// Desc returns the descriptor the instance is bound to, nil once detached.
func (i *Instance) Desc() *Desc { return i.desc }

// Detach drops the descriptor binding without touching the descriptor's live
// set. Used when the descriptor itself is going away.
func (i *Instance) Detach() { i.desc = nil }

// Container returns the asset the instance is bound to.
func (i *Instance) Container() *Container { return i.container }

// PackageURL is the url of the graph the instance was created from.
func (i *Instance) PackageURL() string { return i.packageURL }

// Label returns the container name, the user-visible instance label.
func (i *Instance) Label() string {
	if i.container == nil {
		return ""
	}
	return i.container.Name()
}

// IsFrozen reports whether user edits are disabled.
func (i *Instance) IsFrozen() bool { return i.frozen }

// SetFrozen enables or disables user edits.
func (i *Instance) SetFrozen(frozen bool) { i.frozen = frozen }

// HasPendingImageRender reports whether an image input changed since the
// last render submission.
func (i *Instance) HasPendingImageRender() bool { return i.pendingImageRender }

// ClearPendingImageRender is called once the instance is submitted.
func (i *Instance) ClearPendingImageRender() { i.pendingImageRender = false }

// GetOutput returns the output with the given uid, or nil.
func (i *Instance) GetOutput(uid uint32) *OutputInstance {
	for _, o := range i.Outputs {
		if o.UID == uid {
			return o
		}
	}
	return nil
}

// GetOutputByName returns the output with the given identifier, or nil.
func (i *Instance) GetOutputByName(identifier string) *OutputInstance {
	for _, o := range i.Outputs {
		if o.Identifier() == identifier {
			return o
		}
	}
	return nil
}

// GetInput returns the input with the given uid, or nil.
func (i *Instance) GetInput(uid uint32) InputInstance {
	for _, in := range i.Inputs {
		if in.UID() == uid {
			return in
		}
	}
	return nil
}

// GetInputByName returns the input with the given identifier, or nil.
func (i *Instance) GetInputByName(identifier string) InputInstance {
	for _, in := range i.Inputs {
		if in.Desc().Identifier == identifier {
			return in
		}
	}
	return nil
}

// DirtyOutputs returns the enabled outputs waiting for a render.
func (i *Instance) DirtyOutputs() []*OutputInstance {
	var out []*OutputInstance
	for _, o := range i.Outputs {
		if o.Enabled && o.Dirty {
			out = append(out, o)
		}
	}
	return out
}

// UpdateInput sets src on the image input with the given uid. Uid 0 targets
// every image input currently sourced from src, which is how a reimported
// image reaches its consumers. It returns how many outputs were marked
// dirty; zero means no render is needed.
func (i *Instance) UpdateInput(ctx context.Context, uid uint32, src ImageSource) int {
	n := 0
	for _, in := range i.Inputs {
		img, ok := in.(*ImageInput)
		if !ok {
			continue
		}
		if uid == 0 {
			if src == nil || img.Source != src {
				continue
			}
		} else if img.UID() != uid {
			continue
		}
		n += i.setImage(ctx, img, src)
	}
	return n
}

// UpdateInputByName is UpdateInput addressed by input identifier.
func (i *Instance) UpdateInputByName(ctx context.Context, identifier string, src ImageSource) int {
	in, ok := i.GetInputByName(identifier).(*ImageInput)
	if !ok {
		return 0
	}
	return i.setImage(ctx, in, src)
}

func (i *Instance) setImage(ctx context.Context, in *ImageInput, src ImageSource) int {
	if err := in.setSource(src); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to prepare image input.",
			"instance", i.Label(), "input", in.desc.Identifier, "error", err)
	}
	if !i.pendingImageRender {
		return 0
	}
	return i.markAltered(in.desc)
}

// SetInputValue sets a numerical input addressed by uid. The value is
// converted to the input kind and clamped when the input is clamped. It
// returns how many outputs were marked dirty, zero when the value did not
// change.
func (i *Instance) SetInputValue(uid uint32, v value.Value) (int, error) {
	in := i.GetInput(uid)
	if in == nil {
		return 0, fmt.Errorf("%w: uid %d", ErrNoSuchInput, uid)
	}
	return i.setValue(in, v)
}

// SetInputValueByName is SetInputValue addressed by identifier.
func (i *Instance) SetInputValueByName(identifier string, v value.Value) (int, error) {
	in := i.GetInputByName(identifier)
	if in == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoSuchInput, identifier)
	}
	return i.setValue(in, v)
}

func (i *Instance) setValue(in InputInstance, v value.Value) (int, error) {
	if i.frozen {
		return 0, fmt.Errorf("%w: %s", ErrFrozen, i.Label())
	}
	num, ok := in.(*NumericalInput)
	if !ok {
		return 0, fmt.Errorf("%w: %q is an image input", ErrKindMismatch, in.Desc().Identifier)
	}
	if !i.assign(num, v) {
		return 0, nil
	}
	return i.markAltered(num.desc), nil
}

// assign stores v into in, returning whether the stored value changed.
func (i *Instance) assign(in *NumericalInput, v value.Value) bool {
	v = v.Convert(in.desc.Kind)
	if in.desc.Clamped {
		v = v.Clamp(in.desc.Min, in.desc.Max)
	}
	if v.Equal(in.Value) {
		return false
	}
	in.Value = v
	return true
}

// markAltered dirties every enabled output listed in the altered set of d.
func (i *Instance) markAltered(d *InputDesc) int {
	n := 0
	for _, uid := range d.AlteredOutputs {
		if out := i.GetOutput(uid); out != nil && out.Enabled {
			out.MarkDirty()
			n++
		}
	}
	if n > 0 && i.container != nil {
		i.container.MarkModified()
	}
	return n
}

// ResetToDefault restores every numerical input to its descriptor default
// and returns how many outputs were marked dirty.
func (i *Instance) ResetToDefault() (int, error) {
	if i.frozen {
		return 0, fmt.Errorf("%w: %s", ErrFrozen, i.Label())
	}
	dirty := map[uint32]struct{}{}
	for _, in := range i.Inputs {
		num, ok := in.(*NumericalInput)
		if !ok || !i.assign(num, num.desc.Default) {
			continue
		}
		i.markAltered(num.desc)
		for _, uid := range num.desc.AlteredOutputs {
			if out := i.GetOutput(uid); out != nil && out.Enabled {
				dirty[uid] = struct{}{}
			}
		}
	}
	return len(dirty), nil
}

// Plug attaches a render-state observer.
func (i *Instance) Plug(o Observer) {
	check(!slices.Contains(i.observers, o), "observer already plugged into instance %s", i.id)
	i.observers = append(i.observers, o)
}

// Unplug detaches a render-state observer.
func (i *Instance) Unplug(o Observer) {
	if len(i.observers) == 0 {
		return
	}
	idx := slices.Index(i.observers, o)
	check(idx >= 0, "observer not plugged into instance %s", i.id)
	i.observers = slices.Delete(i.observers, idx, idx+1)
}

// Destroy unsubscribes the instance from its descriptor, tells every
// observer, then releases inputs and outputs. Output textures are left to
// whoever else holds them.
func (i *Instance) Destroy(ctx context.Context) {
	if i.desc != nil {
		if pkg := i.desc.parent; pkg != nil {
			pkg.retire(i.id)
		}
		if slices.Contains(i.desc.loaded, i) {
			i.desc.UnSubscribe(i)
		} else {
			i.desc = nil
		}
	}
	observers := i.observers
	i.observers = nil
	for _, o := range observers {
		o.NotifyDeleted(i.id)
	}
	i.Inputs = nil
	i.Outputs = nil
	if i.container != nil && i.container.instance == i {
		i.container.instance = nil
	}
	ctxlog.FromContext(ctx).Debug("Graph instance destroyed.", "instance", i.Label(), "id", i.id)
}
