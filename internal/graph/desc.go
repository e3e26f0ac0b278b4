package graph

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// NoImageHash is what a heavy image input without a default source
// contributes to the descriptor hash.
const NoImageHash = "NoImage;"

type uidIndex struct {
	uid     uint32
	ordinal int
}

// Desc is a graph descriptor: the static template of a graph and the set of
// instances subscribed to it.
type Desc struct {
	URL         string
	Label       string
	Description string
	Inputs      []*InputDesc
	Outputs     []*OutputDesc

	sortedInputs  []uidIndex
	sortedOutputs []uidIndex

	loaded      []*Instance
	instanceIDs []uuid.UUID
	parent      *Package
}

// Package returns the owning package, nil once destroyed.
func (d *Desc) Package() *Package { return d.parent }

// Instances returns the subscribed instances.
func (d *Desc) Instances() []*Instance { return slices.Clone(d.loaded) }

// InstanceIDs returns the ids of every instance ever created from d.
func (d *Desc) InstanceIDs() []uuid.UUID { return slices.Clone(d.instanceIDs) }

// Instantiate creates an instance bound to c. The instance id is recorded in
// d's known ids. With createOutputs every output gets a texture right away;
// with subscribe the instance joins d's live set. Non-dynamic instances start
// frozen.
func (d *Desc) Instantiate(ctx context.Context, c *Container, createOutputs, subscribe, dynamic bool) (*Instance, error) {
	check(d.parent != nil, "instantiate %q: descriptor has no package", d.URL)

	inst := newInstance(d, c)
	inst.frozen = !dynamic
	d.addInstanceID(inst.id)

	if createOutputs {
		if err := CreateTextures(ctx, inst); err != nil {
			inst.Destroy(ctx)
			return nil, err
		}
	}
	if subscribe {
		d.Subscribe(inst)
	}
	return inst, nil
}

// Subscribe adds inst to the live set and counts it in the package.
func (d *Desc) Subscribe(inst *Instance) {
	check(d.parent != nil, "subscribe to %q: descriptor has no package", d.URL)
	check(!slices.Contains(d.loaded, inst), "instance %s is already subscribed to %q", inst.id, d.URL)
	check(inst.desc == nil || inst.desc == d, "instance %s belongs to another descriptor", inst.id)
	d.loaded = append(d.loaded, inst)
	inst.desc = d
	d.addInstanceID(inst.id)
	d.parent.instanceSubscribed()
}

// UnSubscribe removes inst from the live set, detaches it and lets its
// container be garbage collected once nothing references it.
func (d *Desc) UnSubscribe(inst *Instance) {
	check(inst.desc == d, "instance %s is not bound to %q", inst.id, d.URL)
	if i := slices.Index(d.loaded, inst); i >= 0 {
		d.loaded = slices.Delete(d.loaded, i, i+1)
		d.parent.instanceUnsubscribed()
	}
	inst.desc = nil
	if inst.container != nil {
		inst.container.SetStandalone(false)
	}
}

// Destroy forcibly detaches every subscribed instance. Instances are never
// deleted here.
func (d *Desc) Destroy() {
	for _, inst := range slices.Clone(d.loaded) {
		d.UnSubscribe(inst)
	}
	d.parent = nil
}

func (d *Desc) addInstanceID(id uuid.UUID) {
	if !slices.Contains(d.instanceIDs, id) {
		d.instanceIDs = append(d.instanceIDs, id)
	}
}

// DefaultHeavyInputHash concatenates, in input order, the printed defaults
// of every heavy input.
func (d *Desc) DefaultHeavyInputHash() string {
	var sb strings.Builder
	for _, in := range d.Inputs {
		if !in.Heavy {
			continue
		}
		if in.Kind == value.Image {
			if in.DefaultImage != nil {
				sb.WriteString(in.DefaultImage.FullName())
				sb.WriteByte(';')
			} else {
				sb.WriteString(NoImageHash)
			}
			continue
		}
		sb.WriteString(in.Default.HashString())
	}
	return sb.String()
}

// GetOutputDesc returns the output descriptor with the given uid, or nil.
func (d *Desc) GetOutputDesc(uid uint32) *OutputDesc {
	if len(d.sortedOutputs) > 0 {
		if i, ok := search(d.sortedOutputs, uid); ok {
			return d.Outputs[i]
		}
		return nil
	}
	for _, o := range d.Outputs {
		if o.UID == uid {
			return o
		}
	}
	return nil
}

// GetInputDesc returns the input descriptor with the given uid, or nil.
func (d *Desc) GetInputDesc(uid uint32) *InputDesc {
	if len(d.sortedInputs) > 0 {
		if i, ok := search(d.sortedInputs, uid); ok {
			return d.Inputs[i]
		}
		return nil
	}
	for _, in := range d.Inputs {
		if in.UID == uid {
			return in
		}
	}
	return nil
}

// GetInputDescByName returns the input descriptor with the given
// identifier, or nil.
func (d *Desc) GetInputDescByName(identifier string) *InputDesc {
	for _, in := range d.Inputs {
		if in.Identifier == identifier {
			return in
		}
	}
	return nil
}

// OutputUIDs returns the uids of every output, in descriptor order.
func (d *Desc) OutputUIDs() []uint32 {
	out := make([]uint32, len(d.Outputs))
	for i, o := range d.Outputs {
		out[i] = o.UID
	}
	return out
}

// CommitOutputs builds the sorted uid index of outputs. It runs once, after
// the output list is final.
func (d *Desc) CommitOutputs() {
	check(len(d.sortedOutputs) == 0, "%q: outputs already committed", d.URL)
	d.sortedOutputs = make([]uidIndex, len(d.Outputs))
	for i, o := range d.Outputs {
		d.sortedOutputs[i] = uidIndex{uid: o.UID, ordinal: i}
	}
	sort.SliceStable(d.sortedOutputs, func(a, b int) bool { return d.sortedOutputs[a].uid < d.sortedOutputs[b].uid })
}

// CommitInputs builds the sorted uid index of inputs. It runs once, after the
// input list is final.
func (d *Desc) CommitInputs() {
	check(len(d.sortedInputs) == 0, "%q: inputs already committed", d.URL)
	d.sortedInputs = make([]uidIndex, len(d.Inputs))
	for i, in := range d.Inputs {
		d.sortedInputs[i] = uidIndex{uid: in.UID, ordinal: i}
	}
	sort.SliceStable(d.sortedInputs, func(a, b int) bool { return d.sortedInputs[a].uid < d.sortedInputs[b].uid })
}

func search(idx []uidIndex, uid uint32) (int, bool) {
	i := sort.Search(len(idx), func(i int) bool { return idx[i].uid >= uid })
	if i < len(idx) && idx[i].uid == uid {
		return idx[i].ordinal, true
	}
	return 0, false
}
