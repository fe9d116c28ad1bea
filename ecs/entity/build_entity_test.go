package entity

import (
	"testing"

	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
	"github.com/milk9111/spine/prefabs"
)

func TestBuildScene(t *testing.T) {
	w := ecs.NewWorld()
	assets := NewAssets()
	ents, err := BuildScene(w, "scene.yaml", assets)
	if err != nil {
		t.Fatalf("build scene: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(ents))
	}

	walker, ok := ecs.Get(w, ents[0], component.SkeletonComponent.Kind())
	if !ok {
		t.Fatalf("walker has no skeleton")
	}
	jumper, ok := ecs.Get(w, ents[1], component.SkeletonComponent.Kind())
	if !ok {
		t.Fatalf("jumper has no skeleton")
	}

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "shared_data_separate_pose",
			check: func(t *testing.T) {
				if walker.Animation.Skeleton.Data != jumper.Animation.Skeleton.Data {
					t.Fatalf("expected instances to share skeleton data")
				}
				if walker.Animation.Skeleton == jumper.Animation.Skeleton {
					t.Fatalf("instances must not share a skeleton")
				}
			},
		},
		{
			name: "tracks_started",
			check: func(t *testing.T) {
				if cur := walker.Animation.Current(0); cur == nil || cur.Animation.Name != "walk" || !cur.Loop {
					t.Fatalf("expected walker looping walk, got %v", cur)
				}
				if cur := walker.Animation.Current(1); cur == nil || cur.Alpha != 0.5 {
					t.Fatalf("expected idle layered at alpha 0.5, got %v", cur)
				}
				if cur := jumper.Animation.Current(0); cur == nil || cur.Animation.Name != "jump" {
					t.Fatalf("expected jumper on jump, got %v", cur)
				}
				if q := jumper.Animation.State().Queued(0); len(q) != 1 || q[0].Animation.Name != "walk" {
					t.Fatalf("expected walk queued after jump, got %v", q)
				}
			},
		},
		{
			name: "skin_and_time_scale",
			check: func(t *testing.T) {
				if skin := jumper.Animation.Skeleton.Skin; skin == nil || skin.Name != "armored" {
					t.Fatalf("expected armored skin, got %v", skin)
				}
				if got := jumper.Animation.TimeScale(); got != 0.8 {
					t.Fatalf("expected time scale 0.8, got %v", got)
				}
			},
		},
		{
			name: "components_attached",
			check: func(t *testing.T) {
				if !ecs.Has(w, ents[0], component.ScriptComponent.Kind()) {
					t.Fatalf("expected walker script")
				}
				if ecs.Has(w, ents[1], component.ScriptComponent.Kind()) {
					t.Fatalf("jumper has no script")
				}
				tr, ok := ecs.Get(w, ents[1], component.TransformComponent.Kind())
				if !ok || tr.X != 520 || !tr.FlipX {
					t.Fatalf("unexpected jumper transform %+v", tr)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.check)
	}
}

func TestBuildEntityErrors(t *testing.T) {
	tests := []struct {
		name string
		spec prefabs.EntityBuildSpec
	}{
		{"no_components", prefabs.EntityBuildSpec{Name: "empty"}},
		{"unknown_component", prefabs.EntityBuildSpec{Name: "odd", Components: map[string]any{
			"transform": map[string]any{"x": 1},
			"physics":   map[string]any{},
		}}},
		{"missing_skeleton_file", prefabs.EntityBuildSpec{Name: "ghost", Components: map[string]any{
			"skeleton": map[string]any{"file": "missing.yaml"},
		}}},
		{"unknown_animation", prefabs.EntityBuildSpec{Name: "bad", Components: map[string]any{
			"skeleton": map[string]any{
				"file":   "stickman.yaml",
				"tracks": []any{map[string]any{"animation": "fly"}},
			},
		}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			if _, err := BuildEntity(w, tc.spec, nil); err == nil {
				t.Fatalf("expected error")
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("expected failed build to leave no entities, got %d", n)
			}
		})
	}
}
