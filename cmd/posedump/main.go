package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	spinecomp "github.com/milk9111/spine/component"
	"github.com/milk9111/spine/inspect"
	"github.com/milk9111/spine/prefabs"
)

func main() {
	skeletonFile := flag.String("skeleton", "stickman.yaml", "skeleton spec in prefabs/")
	animations := flag.String("animation", "idle", "comma separated animations; the first is set, the rest are queued on track 0")
	loop := flag.Bool("loop", true, "loop the animations")
	steps := flag.Int("steps", 60, "number of updates to run before dumping")
	dt := flag.Float64("dt", 1.0/60.0, "seconds per update")
	skin := flag.String("skin", "", "skin to apply")
	events := flag.Bool("events", false, "print playback events as they fire")
	format := flag.String("format", "yaml", "output format: yaml, json or spew")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("posedump: ")

	asset, err := prefabs.LoadSkeleton(*skeletonFile)
	if err != nil {
		log.Fatal(err)
	}
	inst, err := asset.NewInstance()
	if err != nil {
		log.Fatal(err)
	}
	if *skin != "" {
		if err := inst.Skeleton.SetSkin(*skin); err != nil {
			log.Fatal(err)
		}
	}

	if *events {
		spinecomp.BindAnimationEvents(inst, &spinecomp.AnimationEventEmitter{Handlers: []spinecomp.AnimationEventHandler{
			func(a *spinecomp.SkeletonAnimation, evt spinecomp.AnimationEvent) {
				printEvent(a.Skeleton.Time, evt)
			},
		}})
	}

	for i, name := range strings.Split(*animations, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i == 0 {
			_, err = inst.SetAnimation(0, name, *loop)
		} else {
			_, err = inst.AddAnimation(0, name, *loop, 0)
		}
		if err != nil {
			log.Fatal(err)
		}
	}

	for i := 0; i < *steps; i++ {
		inst.Update(float32(*dt))
	}

	if err := dump(os.Stdout, *format, inspect.Capture(*skeletonFile, inst)); err != nil {
		log.Fatal(err)
	}
}

func printEvent(t float32, evt spinecomp.AnimationEvent) {
	if evt.Type == spinecomp.AnimationEventKeyed {
		fmt.Fprintf(os.Stderr, "%7.3f track %d %-9s %s %s int=%d float=%g string=%q\n",
			t, evt.Track, evt.Type, evt.Animation, evt.Name, evt.Int, evt.Float, evt.String)
		return
	}
	fmt.Fprintf(os.Stderr, "%7.3f track %d %-9s %s\n", t, evt.Track, evt.Type, evt.Animation)
}

func dump(out *os.File, format string, snap inspect.Snapshot) error {
	switch format {
	case "yaml":
		data, err := inspect.YAML(snap)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "spew":
		_, err := fmt.Fprint(out, inspect.Dump(snap))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
