package render

import (
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// states maps instance ids to the live instances the renderer knows about.
// It is plugged into every pushed instance.
type states struct {
	mu        sync.Mutex
	instances map[uuid.UUID]*graph.Instance
	onDelete  func(uuid.UUID)
}

func newStates(onDelete func(uuid.UUID)) *states {
	return &states{instances: make(map[uuid.UUID]*graph.Instance), onDelete: onDelete}
}

func (s *states) track(inst *graph.Instance) {
	s.mu.Lock()
	_, known := s.instances[inst.ID()]
	if !known {
		s.instances[inst.ID()] = inst
	}
	s.mu.Unlock()
	if !known {
		inst.Plug(s)
	}
}

func (s *states) lookup(id uuid.UUID) *graph.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances[id]
}

// NotifyDeleted implements graph.Observer.
func (s *states) NotifyDeleted(id uuid.UUID) {
	s.mu.Lock()
	delete(s.instances, id)
	s.mu.Unlock()
	if s.onDelete != nil {
		s.onDelete(id)
	}
}

// release unplugs from every known instance.
func (s *states) release() {
	s.mu.Lock()
	insts := s.instances
	s.instances = make(map[uuid.UUID]*graph.Instance)
	s.mu.Unlock()
	for _, inst := range insts {
		inst.Unplug(s)
	}
}
