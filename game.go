package main

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/spine/ecs"
	"github.com/milk9111/spine/ecs/component"
	"github.com/milk9111/spine/ecs/entity"
	"github.com/milk9111/spine/ecs/system"
	"github.com/milk9111/spine/inspect"
	"github.com/milk9111/spine/prefabs"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	statusFrames = 180
	emptyMix     = 0.2
)

var animationKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type GameConfig struct {
	Scene   string
	Debug   bool
	Watch   bool
	Inspect *inspect.Server
}

type Game struct {
	frames int

	cfg       GameConfig
	world     *ecs.World
	scheduler *ecs.Scheduler
	scripts   *system.ScriptSystem
	assets    *entity.Assets
	entities  []ecs.Entity
	selected  int

	watcher   *prefabs.Watcher
	clipboard bool
	paused    bool
	status    string
	statusTTL int
}

func NewGame(cfg GameConfig) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		world:   ecs.NewWorld(),
		scripts: system.NewScriptSystem(),
		assets:  entity.NewAssets(),
	}

	g.scheduler = ecs.NewScheduler(system.NewAnimationSystem(), g.scripts)
	if cfg.Inspect != nil {
		g.scheduler.Add(system.NewInspectSystem(cfg.Inspect))
	}

	if err := g.loadScene(); err != nil {
		return nil, err
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("viewer: hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("viewer: clipboard unavailable: %v", err)
	} else {
		g.clipboard = true
	}

	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) loadScene() error {
	for _, e := range g.entities {
		ecs.DestroyEntity(g.world, e)
	}
	g.entities = nil

	ents, err := entity.BuildScene(g.world, g.cfg.Scene, g.assets)
	if err != nil {
		return err
	}
	g.entities = ents
	if g.selected >= len(ents) {
		g.selected = 0
	}
	return nil
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	g.statusTTL = statusFrames
	log.Printf("viewer: %s", g.status)
}

func (g *Game) selectedInstance() *component.SkeletonInstance {
	if g.selected >= len(g.entities) {
		return nil
	}
	inst, ok := ecs.Get(g.world, g.entities[g.selected], component.SkeletonComponent.Kind())
	if !ok {
		return nil
	}
	return inst
}

func (g *Game) Update() error {
	g.frames++
	if g.statusTTL > 0 {
		g.statusTTL--
	}

	g.reloadChanged()
	g.handleInput()

	if !g.paused || inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.scheduler.Update(g.world)
	}
	return nil
}

func (g *Game) reloadChanged() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("viewer: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	name := change.Name()
	if change.Script {
		g.scripts.Reload(name)
		ecs.ForEach(g.world, component.ScriptComponent.Kind(), func(_ ecs.Entity, s *component.Script) {
			if s.Path == name {
				s.Disabled = false
			}
		})
		g.setStatus("reloaded script %s", name)
		return
	}

	g.assets.Forget(name)
	if err := g.loadScene(); err != nil {
		g.setStatus("reload %s: %v", name, err)
		return
	}
	g.setStatus("reloaded %s", name)
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(g.entities) > 0 {
		g.selected = (g.selected + 1) % len(g.entities)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.cfg.Debug = !g.cfg.Debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.loadScene(); err != nil {
			g.setStatus("reload scene: %v", err)
		}
	}

	inst := g.selectedInstance()
	if inst == nil || inst.Animation == nil {
		return
	}

	names := inst.Animation.Library.Names()
	for i, key := range animationKeys {
		if i >= len(names) || !inpututil.IsKeyJustPressed(key) {
			continue
		}
		loop := !ebiten.IsKeyPressed(ebiten.KeyShift)
		if _, err := inst.Animation.SetAnimation(0, names[i], loop); err != nil {
			g.setStatus("set %s: %v", names[i], err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		if _, err := inst.Animation.SetEmptyAnimation(0, emptyMix); err != nil {
			g.setStatus("empty: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.cycleSkin(inst)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyPose(inst)
	}
}

func (g *Game) cycleSkin(inst *component.SkeletonInstance) {
	skel := inst.Animation.Skeleton
	skins := skel.Data.Skins
	if len(skins) == 0 {
		return
	}
	next := 0
	for i, s := range skins {
		if s == skel.Skin {
			next = (i + 1) % len(skins)
		}
	}
	if err := skel.SetSkin(skins[next].Name); err != nil {
		g.setStatus("skin: %v", err)
		return
	}
	g.setStatus("%s: skin %s", inst.Name, skins[next].Name)
}

func (g *Game) copyPose(inst *component.SkeletonInstance) {
	out, err := inspect.YAML(inspect.Capture(inst.Name, inst.Animation))
	if err != nil {
		g.setStatus("copy pose: %v", err)
		return
	}
	if !g.clipboard {
		g.setStatus("clipboard unavailable, pose written to log")
		log.Printf("%s", out)
		return
	}
	clipboard.Write(clipboard.FmtText, out)
	g.setStatus("copied %s pose", inst.Name)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x22, 0x28, 0xff})

	for i, e := range g.entities {
		inst, ok := ecs.Get(g.world, e, component.SkeletonComponent.Kind())
		if !ok || inst.Animation == nil {
			continue
		}
		if t, ok := ecs.Get(g.world, e, component.TransformComponent.Kind()); ok && t.Hidden {
			continue
		}
		drawSkeleton(screen, inst.Animation.Skeleton, g.cfg.Debug || inst.Animation.DebugBones, i == g.selected)
	}

	ebitenutil.DebugPrint(screen, g.overlay())
}

func (g *Game) overlay() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS())
	if g.paused {
		b.WriteString("    PAUSED (right arrow steps)")
	}
	b.WriteString("\n")

	if inst := g.selectedInstance(); inst != nil && inst.Animation != nil {
		fmt.Fprintf(&b, "[%s] skin=%s\n", inst.Name, skinName(inst))
		for _, tr := range inspect.Capture(inst.Name, inst.Animation).Tracks {
			fmt.Fprintf(&b, "  track %d: %s t=%.2f", tr.Track, tr.Animation, tr.Time)
			if len(tr.Mixing) > 0 {
				fmt.Fprintf(&b, " <- %s", strings.Join(tr.Mixing, " <- "))
			}
			if len(tr.Queued) > 0 {
				fmt.Fprintf(&b, " then %s", strings.Join(tr.Queued, ", "))
			}
			b.WriteString("\n")
		}
		for i, name := range inst.Animation.Library.Names() {
			if i >= len(animationKeys) {
				break
			}
			fmt.Fprintf(&b, "%d:%s ", i+1, name)
		}
		b.WriteString("\n")
	}
	b.WriteString("tab select  shift+n play once  e empty  s skin  c copy pose  d debug  r reload  space pause\n")
	if g.statusTTL > 0 {
		b.WriteString(g.status)
	}
	return b.String()
}

func skinName(inst *component.SkeletonInstance) string {
	if inst.Animation.Skeleton.Skin == nil {
		return "-"
	}
	return inst.Animation.Skeleton.Skin.Name
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
