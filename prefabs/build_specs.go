package prefabs

import "gopkg.in/yaml.v3"

// SceneSpec lists the skeleton instances to place in a world.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Entities []EntityBuildSpec `yaml:"entities"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}

// EntityBuildSpec names an instance and its components, keyed by component
// name ("transform", "skeleton", "script").
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X      float32 `yaml:"x"`
	Y      float32 `yaml:"y"`
	FlipX  bool    `yaml:"flip_x"`
	FlipY  bool    `yaml:"flip_y"`
	Hidden bool    `yaml:"hidden"`
}

// TrackComponentSpec starts an animation on a track when the instance spawns.
type TrackComponentSpec struct {
	Track     int      `yaml:"track"`
	Animation string   `yaml:"animation"`
	Loop      bool     `yaml:"loop"`
	Delay     float32  `yaml:"delay"`
	Alpha     *float32 `yaml:"alpha"`
	// Queue adds the animation after the track's current one instead of
	// replacing it.
	Queue bool `yaml:"queue"`
}

type SkeletonComponentSpec struct {
	File      string               `yaml:"file"`
	Skin      string               `yaml:"skin"`
	TimeScale *float32             `yaml:"time_scale"`
	Tracks    []TrackComponentSpec `yaml:"tracks"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}
