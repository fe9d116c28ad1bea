package system

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	spinecomp "github.com/milk9111/spine/component"
	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
	"github.com/milk9111/spine/prefabs"
)

// ScriptSystem runs tengo listener scripts for the animation events an
// instance raised this frame. A script defines any of on_start, on_interrupt,
// on_end, on_dispose, on_complete and on_event as func(engine, state, event).
type ScriptSystem struct {
	// Load reads script source by path; prefabs.LoadScript when nil.
	Load  func(path string) ([]byte, error)
	cache map[ecs.Entity]*scriptRuntime
}

func NewScriptSystem() *ScriptSystem {
	return &ScriptSystem{Load: prefabs.LoadScript, cache: map[ecs.Entity]*scriptRuntime{}}
}

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

var handlerPattern = regexp.MustCompile(`(?m)^\s*(on_[a-z_]+)\s*:=\s*func`)

var handlerPhases = map[string]spinecomp.AnimationEventType{
	"on_start":     spinecomp.AnimationEventStart,
	"on_interrupt": spinecomp.AnimationEventInterrupt,
	"on_end":       spinecomp.AnimationEventEnd,
	"on_dispose":   spinecomp.AnimationEventDispose,
	"on_complete":  spinecomp.AnimationEventComplete,
	"on_event":     spinecomp.AnimationEventKeyed,
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if s.cache == nil {
		s.cache = map[ecs.Entity]*scriptRuntime{}
	}
	for e := range s.cache {
		if !ecs.IsAlive(w, e) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach2(w, component.SkeletonComponent.Kind(), component.ScriptComponent.Kind(), func(e ecs.Entity, inst *component.SkeletonInstance, script *component.Script) {
		if script.Disabled || inst.Animation == nil {
			return
		}
		events := AnimationEvents(w, e)
		if len(events) == 0 {
			return
		}

		rt, err := s.runtime(e, script.Path)
		if err != nil {
			log.Printf("script: entity=%s load %s: %v", e, script.Path, err)
			script.Disabled = true
			return
		}

		engine := buildScriptEngine(inst.Animation)
		for _, evt := range events {
			if err := rt.run(evt, engine); err != nil {
				log.Printf("script: entity=%s %s handler: %v", e, evt.Type, err)
				script.Disabled = true
				return
			}
		}
	})
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}
	load := s.Load
	if load == nil {
		load = prefabs.LoadScript
	}
	src, err := load(path)
	if err != nil {
		return nil, err
	}
	rt, err := compileScript(path, src)
	if err != nil {
		return nil, err
	}
	s.cache[e] = rt
	return rt, nil
}

// Reload drops cached runtimes for path so the next event recompiles it.
func (s *ScriptSystem) Reload(path string) {
	for e, rt := range s.cache {
		if rt.path == path || strings.HasSuffix(path, rt.path) {
			delete(s.cache, e)
		}
	}
}

// compileScript appends a dispatcher calling only the handlers the script
// defines.
func compileScript(path string, src []byte) (*scriptRuntime, error) {
	var dispatch strings.Builder
	for _, m := range handlerPattern.FindAllSubmatch(src, -1) {
		name := string(m[1])
		phase, ok := handlerPhases[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&dispatch, "if __phase == %q { %s(__engine, __state, __event) }\n", phase, name)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch.String()))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__event", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return &scriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (rt *scriptRuntime) run(evt spinecomp.AnimationEvent, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__phase", string(evt.Type)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__event", eventObject(evt)); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func eventObject(evt spinecomp.AnimationEvent) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"type":      &tengo.String{Value: string(evt.Type)},
		"track":     &tengo.Int{Value: int64(evt.Track)},
		"animation": &tengo.String{Value: evt.Animation},
		"name":      &tengo.String{Value: evt.Name},
		"time":      &tengo.Float{Value: float64(evt.Time)},
		"int":       &tengo.Int{Value: int64(evt.Int)},
		"float":     &tengo.Float{Value: float64(evt.Float)},
		"string":    &tengo.String{Value: evt.String},
	}}
}

func buildScriptEngine(a *spinecomp.SkeletonAnimation) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["set_animation"] = &tengo.UserFunction{Name: "set_animation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		_, err := a.SetAnimation(objectAsInt(args[0]), objectAsString(args[1]), len(args) > 2 && !args[2].IsFalsy())
		return boolObject(err == nil), nil
	}}

	values["add_animation"] = &tengo.UserFunction{Name: "add_animation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		var delay float32
		if len(args) > 3 {
			delay = objectAsFloat(args[3])
		}
		_, err := a.AddAnimation(objectAsInt(args[0]), objectAsString(args[1]), len(args) > 2 && !args[2].IsFalsy(), delay)
		return boolObject(err == nil), nil
	}}

	values["set_empty_animation"] = &tengo.UserFunction{Name: "set_empty_animation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		var mix float32
		if len(args) > 1 {
			mix = objectAsFloat(args[1])
		}
		_, err := a.SetEmptyAnimation(objectAsInt(args[0]), mix)
		return boolObject(err == nil), nil
	}}

	values["current"] = &tengo.UserFunction{Name: "current", Value: func(args ...tengo.Object) (tengo.Object, error) {
		track := 0
		if len(args) > 0 {
			track = objectAsInt(args[0])
		}
		if cur := a.Current(track); cur != nil {
			return &tengo.String{Value: cur.Animation.Name}, nil
		}
		return &tengo.String{Value: ""}, nil
	}}

	values["set_time_scale"] = &tengo.UserFunction{Name: "set_time_scale", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		a.SetTimeScale(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return strings.TrimSpace(v.Value)
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsInt(obj tengo.Object) int {
	v, _ := tengo.ToInt(obj)
	return v
}

func objectAsFloat(obj tengo.Object) float32 {
	v, _ := tengo.ToFloat64(obj)
	return float32(v)
}
