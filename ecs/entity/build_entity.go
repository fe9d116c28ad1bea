package entity

import (
	"fmt"
	"sort"

	"github.com/milk9111/spine/anim"
	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
	"github.com/milk9111/spine/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

// Assets caches built skeletons by file so every instance of a skeleton shares
// its Data and Library.
type Assets struct {
	skeletons map[string]*prefabs.SkeletonAsset
}

func NewAssets() *Assets {
	return &Assets{skeletons: map[string]*prefabs.SkeletonAsset{}}
}

func (a *Assets) Skeleton(file string) (*prefabs.SkeletonAsset, error) {
	if a.skeletons == nil {
		a.skeletons = map[string]*prefabs.SkeletonAsset{}
	}
	if asset, ok := a.skeletons[file]; ok {
		return asset, nil
	}
	asset, err := prefabs.LoadSkeleton(file)
	if err != nil {
		return nil, err
	}
	a.skeletons[file] = asset
	return asset, nil
}

// Forget drops a cached skeleton so the next build reloads it.
func (a *Assets) Forget(file string) {
	delete(a.skeletons, file)
}

type buildContext struct {
	Name   string
	Assets *Assets
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform": addTransform,
	"skeleton":  addSkeleton,
	"script":    addScript,
}

var componentBuildOrder = []string{
	"transform",
	"skeleton",
	"script",
}

// BuildScene spawns every entity of a scene file.
func BuildScene(w *ecs.World, scenePath string, assets *Assets) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	scene, err := prefabs.LoadSceneSpec(scenePath)
	if err != nil {
		return nil, fmt.Errorf("build scene: load %q: %w", scenePath, err)
	}
	out := make([]ecs.Entity, 0, len(scene.Entities))
	for _, spec := range scene.Entities {
		e, err := BuildEntity(w, spec, assets)
		if err != nil {
			for _, built := range out {
				ecs.DestroyEntity(w, built)
			}
			return nil, fmt.Errorf("build scene: %q: %w", scenePath, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func BuildEntity(w *ecs.World, spec entityPrefabSpec, assets *Assets) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}
	if assets == nil {
		assets = NewAssets()
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{Name: spec.Name, Assets: assets}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", spec.Name, names[0])
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y float32) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:      spec.X,
		Y:      spec.Y,
		FlipX:  spec.FlipX,
		FlipY:  spec.FlipY,
		Hidden: spec.Hidden,
	})
}

type skeletonSpec = prefabs.SkeletonComponentSpec

func addSkeleton(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[skeletonSpec](raw)
	if err != nil {
		return fmt.Errorf("decode skeleton spec: %w", err)
	}
	if spec.File == "" {
		return fmt.Errorf("skeleton spec has no file")
	}
	asset, err := ctx.Assets.Skeleton(spec.File)
	if err != nil {
		return err
	}
	inst, err := asset.NewInstance()
	if err != nil {
		return err
	}
	if spec.Skin != "" {
		if err := inst.Skeleton.SetSkin(spec.Skin); err != nil {
			return err
		}
	}
	if spec.TimeScale != nil {
		inst.SetTimeScale(*spec.TimeScale)
	}
	for _, ts := range spec.Tracks {
		var entry *anim.TrackEntry
		if ts.Queue {
			entry, err = inst.AddAnimation(ts.Track, ts.Animation, ts.Loop, ts.Delay)
		} else {
			entry, err = inst.SetAnimation(ts.Track, ts.Animation, ts.Loop)
		}
		if err != nil {
			return err
		}
		if !ts.Queue {
			entry.Delay = ts.Delay
		}
		if ts.Alpha != nil {
			entry.Alpha = *ts.Alpha
		}
	}

	name := ctx.Name
	if name == "" {
		name = asset.Data.Name
	}
	return ecs.Add(w, e, component.SkeletonComponent.Kind(), &component.SkeletonInstance{Name: name, Animation: inst})
}

type scriptSpec = prefabs.ScriptComponentSpec

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[scriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script spec has no path")
	}
	if _, err := prefabs.LoadScript(spec.Path); err != nil {
		return fmt.Errorf("load script %q: %w", spec.Path, err)
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path})
}
