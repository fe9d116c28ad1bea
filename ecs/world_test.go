package ecs

import (
	"errors"
	"strconv"
	"testing"

	"github.com/milk9111/spine/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex < 0 {
				return
			}
			if !DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("DestroyEntity should return true for alive entity")
			}
			if IsAlive(w, ents[c.destroyIndex]) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if DestroyEntity(w, ents[c.destroyIndex]) {
				t.Fatalf("destroying twice should report false")
			}
			if len(Entities(w)) != c.create-1 {
				t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
			}
		})
	}
}

func intPtr(i int) *int {
	return &i
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	transforms := component.NewComponent[component.Transform]()
	scripts := component.NewComponent[component.Script]()

	walker := CreateEntity(w)
	jumper := CreateEntity(w)

	tests := []struct {
		name  string
		setup func() error
		check func(t *testing.T)
	}{
		{
			name:  "add_transform",
			setup: func() error { return Add(w, walker, transforms.Kind(), &component.Transform{X: 320, Y: 380}) },
			check: func(t *testing.T) {
				tr, ok := Get(w, walker, transforms.Kind())
				if !ok || tr.X != 320 || tr.Y != 380 {
					t.Fatalf("expected transform (320, 380), got %+v ok=%v", tr, ok)
				}
			},
		},
		{
			name:  "replace_transform",
			setup: func() error { return Add(w, walker, transforms.Kind(), &component.Transform{X: 1, FlipX: true}) },
			check: func(t *testing.T) {
				tr, _ := Get(w, walker, transforms.Kind())
				if tr.X != 1 || !tr.FlipX {
					t.Fatalf("expected replaced transform, got %+v", tr)
				}
			},
		},
		{
			name:  "kinds_are_separate_stores",
			setup: func() error { return Add(w, jumper, scripts.Kind(), &component.Script{Path: "stickman.tengo"}) },
			check: func(t *testing.T) {
				if Has(w, jumper, transforms.Kind()) || !Has(w, jumper, scripts.Kind()) {
					t.Fatalf("expected jumper to hold only a script")
				}
				names := ComponentNames(w, jumper)
				if len(names) != 1 || names[0] != "component.Script" {
					t.Fatalf("unexpected component names %v", names)
				}
			},
		},
		{
			name:  "remove_script",
			setup: func() error { return nil },
			check: func(t *testing.T) {
				if !Remove(w, jumper, scripts.Kind()) {
					t.Fatalf("expected remove to report true")
				}
				if Remove(w, jumper, scripts.Kind()) {
					t.Fatalf("expected second remove to report false")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
		})
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	transforms := component.NewComponent[component.Transform]()
	e := CreateEntity(w)
	dead := CreateEntity(w)
	DestroyEntity(w, dead)

	tests := []struct {
		name string
		err  error
		add  func() error
	}{
		{"nil_value", component.ErrNilComponent, func() error { return Add(w, e, transforms.Kind(), nil) }},
		{"zero_kind", component.ErrInvalidComponentKind, func() error {
			return Add(w, e, component.ComponentKind[component.Transform]{}, &component.Transform{})
		}},
		{"dead_entity", component.ErrEntityNotAlive, func() error { return Add(w, dead, transforms.Kind(), &component.Transform{}) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.add(); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestForEach2(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				transforms := component.NewComponent[component.Transform]()
				scripts := component.NewComponent[component.Script]()

				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)
				if err := Add(w, e1, transforms.Kind(), &component.Transform{}); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, transforms.Kind(), &component.Transform{}); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e2, scripts.Kind(), &component.Script{}); err != nil {
					t.Fatal(err)
				}
				if err := Add(w, e3, scripts.Kind(), &component.Script{}); err != nil {
					t.Fatal(err)
				}

				var res []Entity
				ForEach2(w, transforms.Kind(), scripts.Kind(), func(e Entity, _ *component.Transform, _ *component.Script) {
					res = append(res, e)
				})
				if len(res) != 1 || res[0] != e2 {
					t.Fatalf("expected only e2, got %v", res)
				}
			},
		},
		{
			name: "missing_store",
			run: func(t *testing.T) {
				w := NewWorld()
				transforms := component.NewComponent[component.Transform]()
				scripts := component.NewComponent[component.Script]()
				if err := Add(w, CreateEntity(w), transforms.Kind(), &component.Transform{}); err != nil {
					t.Fatal(err)
				}

				calls := 0
				ForEach2(w, transforms.Kind(), scripts.Kind(), func(Entity, *component.Transform, *component.Script) { calls++ })
				if calls != 0 {
					t.Fatalf("expected no calls without a script store, got %d", calls)
				}
			},
		},
		{
			name: "destroy_while_iterating",
			run: func(t *testing.T) {
				w := NewWorld()
				h := component.NewComponent[int]()
				var ents []Entity
				for i := 0; i < 4; i++ {
					e := CreateEntity(w)
					if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
						t.Fatal(err)
					}
					ents = append(ents, e)
				}

				var seen []int
				ForEach(w, h.Kind(), func(e Entity, v *int) {
					seen = append(seen, *v)
					if *v == 0 {
						DestroyEntity(w, ents[2])
					}
				})
				for _, v := range seen {
					if v == 2 {
						t.Fatalf("destroyed entity visited: %v", seen)
					}
				}
				if len(seen) != 3 {
					t.Fatalf("expected 3 visits, got %v", seen)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

type recordSystem struct {
	name string
	log  *[]string
	push bool
}

func (r *recordSystem) Update(w *World) {
	*r.log = append(*r.log, r.name+":"+strconv.Itoa(w.Events().Len()))
	if r.push {
		w.Events().Push(Event{Type: "ping"})
	}
}

func TestSchedulerEvents(t *testing.T) {
	tests := []struct {
		name    string
		systems func(log *[]string) []System
		want    []string
	}{
		{
			name: "later_systems_see_events",
			systems: func(log *[]string) []System {
				return []System{
					&recordSystem{name: "a", log: log, push: true},
					&recordSystem{name: "b", log: log},
					&recordSystem{name: "c", log: log},
				}
			},
			want: []string{"a:0", "b:1", "c:1"},
		},
		{
			name: "nil_system_skipped",
			systems: func(log *[]string) []System {
				return []System{nil, &recordSystem{name: "a", log: log, push: true}}
			},
			want: []string{"a:0"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var log []string
			w := NewWorld()
			s := NewScheduler(tc.systems(&log)...)
			s.Update(w)
			if len(log) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, log)
			}
			for i := range tc.want {
				if log[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, log)
				}
			}
			if w.Events().Len() != 0 {
				t.Fatalf("expected events flushed after update, got %d", w.Events().Len())
			}
		})
	}
}

func TestEventQueueDrain(t *testing.T) {
	var q EventQueue
	q.Push(Event{Type: EventAnimation})
	q.Push(Event{Type: "other"})
	if got := len(q.Events()); got != 2 {
		t.Fatalf("expected Events to peek 2, got %d", got)
	}
	if got := len(q.Drain()); got != 2 {
		t.Fatalf("expected Drain to return 2, got %d", got)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("expected empty queue after drain")
	}
}

func TestEntityReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e := CreateEntity(w)
	if err := Add(w, e, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if !DestroyEntity(w, e) {
		t.Fatal("failed to destroy entity")
	}
	reused := CreateEntity(w)
	if reused.id() != e.id() {
		t.Fatalf("expected id %d reused, got %d", e.id(), reused.id())
	}
	if reused == e || IsAlive(w, e) {
		t.Fatalf("stale handle %s must not alias %s", e, reused)
	}
	if Has(w, reused, h.Kind()) {
		t.Fatalf("reused entity should not inherit components")
	}
	if err := Add(w, e, h.Kind(), intPtr(2)); err == nil {
		t.Fatalf("expected error adding to stale handle")
	}
}
