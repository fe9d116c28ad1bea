package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spine/inspect"
)

func main() {
	debug := flag.Bool("debug", false, "draw bones and attachment outlines")
	scene := flag.String("scene", "scene.yaml", "scene spec in prefabs/")
	inspectAddr := flag.String("inspect", "", "serve the pose inspector on this address (e.g. :8080)")
	watch := flag.Bool("watch", true, "reload specs and scripts when they change on disk")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("spine viewer")

	var server *inspect.Server
	if *inspectAddr != "" {
		server = inspect.NewServer()
		go func() {
			if err := server.ListenAndServe(*inspectAddr); err != nil {
				log.Printf("inspector stopped: %v", err)
			}
		}()
	}

	game, err := NewGame(GameConfig{
		Scene:   *scene,
		Debug:   *debug,
		Watch:   *watch,
		Inspect: server,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
