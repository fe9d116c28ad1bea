package anim

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/milk9111/spine/skeleton"
)

// recorder logs every callback as "kind animation" or "kind animation time".
type recorder struct {
	log []string
}

func (r *recorder) listener(prefix string) *Listener {
	entry := func(kind string) EntryFunc {
		return func(e *TrackEntry) {
			r.log = append(r.log, prefix+kind+" "+e.Animation.Name)
		}
	}
	return &Listener{
		Start:     entry("start"),
		Interrupt: entry("interrupt"),
		End:       entry("end"),
		Dispose:   entry("dispose"),
		Complete:  entry("complete"),
		Event: func(e *TrackEntry, ev *Event) {
			r.log = append(r.log, fmt.Sprintf("%sevent %s %g", prefix, e.Animation.Name, ev.Time))
		},
	}
}

func (r *recorder) count(line string) int {
	n := 0
	for _, l := range r.log {
		if l == line {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.log = r.log[:0]
}

func newTestState(t *testing.T, d *skeleton.Data, anims ...*Animation) (*State, *skeleton.Skeleton, *recorder) {
	t.Helper()
	lib := NewLibrary(d)
	for _, a := range anims {
		if err := lib.Add(a); err != nil {
			t.Fatalf("add %s: %v", a.Name, err)
		}
	}
	s := NewState(NewStateData(lib))
	rec := &recorder{}
	s.AddListener(rec.listener(""))
	return s, newSkeleton(t, d), rec
}

func step(s *State, skel *skeleton.Skeleton, delta float32) {
	s.Update(delta)
	s.Apply(skel)
}

func TestSetAnimationNotFound(t *testing.T) {
	d := testData(t)
	s, _, _ := newTestState(t, d, rotateAnim("idle", 1, 0, 0))

	if _, err := s.SetAnimation(0, "run", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set: got %v, want ErrNotFound", err)
	}
	if _, err := s.AddAnimation(0, "run", true, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("add: got %v, want ErrNotFound", err)
	}
	if s.TrackCount() != 0 {
		t.Fatalf("track created for missing animation")
	}
	if err := s.Data.SetMix("idle", "run", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("set mix: got %v, want ErrNotFound", err)
	}
	if _, err := s.SetAnimation(-1, "idle", true); !errors.Is(err, ErrInvalidTrack) {
		t.Fatalf("negative track: got %v", err)
	}
}

func TestSetAnimationWithoutMixDropsPrevious(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 90), rotateAnim("b", 1, 0, 30))

	s.SetAnimation(0, "a", true)
	step(s, skel, 0.1)
	rec.reset()

	b, err := s.SetAnimation(0, "b", true)
	if err != nil {
		t.Fatalf("set b: %v", err)
	}
	want := []string{"interrupt a", "end a", "dispose a"}
	if !slices.Equal(rec.log, want) {
		t.Fatalf("callbacks = %v, want %v", rec.log, want)
	}
	if chain := s.Chain(0); len(chain) != 1 || chain[0] != b {
		t.Fatalf("chain has %d entries, want only b", len(chain))
	}
	if b.MixingFrom() != nil {
		t.Fatalf("b mixes from %s", b.MixingFrom().Animation.Name)
	}

	step(s, skel, 0.1)
	if got := skel.Bones[armBone].Rotation; !approx(got, 30) {
		t.Fatalf("rotation = %v, want 30", got)
	}
}

func TestSetAnimationDiscardsUnappliedEntry(t *testing.T) {
	d := testData(t)
	s, _, rec := newTestState(t, d, rotateAnim("a", 1, 0, 90), rotateAnim("b", 1, 0, 30))
	s.Data.DefaultMix = 0.5

	s.SetAnimation(0, "a", true)
	s.AddAnimation(0, "a", false, 0)
	s.SetAnimation(0, "b", true)

	want := []string{"interrupt a", "end a", "dispose a", "dispose a"}
	if !slices.Equal(rec.log, want) {
		t.Fatalf("callbacks = %v, want %v", rec.log, want)
	}
	if chain := s.Chain(0); len(chain) != 1 {
		t.Fatalf("chain has %d entries, want 1", len(chain))
	}
	if len(s.Queued(0)) != 0 {
		t.Fatalf("queue not discarded")
	}
}

func TestAddAnimationMixesLinearly(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 90), rotateAnim("b", 1, 0, 0))
	if err := s.Data.SetMix("a", "b", 0.5); err != nil {
		t.Fatalf("set mix: %v", err)
	}

	a, _ := s.SetAnimation(0, "a", false)
	b, err := s.AddAnimation(0, "b", true, 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !approx(b.Delay, 0.5) {
		t.Fatalf("delay = %v, want duration minus mix 0.5", b.Delay)
	}
	if a.Next() != b {
		t.Fatalf("a.Next is not b")
	}

	const dt = 0.125
	for i := 0; i < 4; i++ {
		step(s, skel, dt)
	}
	if s.Current(0) != a {
		t.Fatalf("b started early")
	}

	prevA := float32(1)
	for i := 0; i < 4; i++ {
		step(s, skel, dt)
		if s.Current(0) != b || b.MixingFrom() != a {
			t.Fatalf("step %d: expected b mixing from a", i)
		}
		progress := b.MixTime() / b.MixDuration
		if !approx(a.MixAlpha(), 1-progress) || !approx(b.MixAlpha(), progress) {
			t.Fatalf("step %d: alphas a=%v b=%v at progress %v", i, a.MixAlpha(), b.MixAlpha(), progress)
		}
		if a.MixAlpha() >= prevA {
			t.Fatalf("step %d: a alpha did not decay: %v", i, a.MixAlpha())
		}
		prevA = a.MixAlpha()
		if got := skel.Bones[armBone].Rotation; !approx(got, 90*a.MixAlpha()) {
			t.Fatalf("step %d: rotation = %v, want %v", i, got, 90*a.MixAlpha())
		}
	}
	if a.MixAlpha() != 0 {
		t.Fatalf("a alpha = %v after the mix, want 0", a.MixAlpha())
	}

	step(s, skel, dt)
	if chain := s.Chain(0); len(chain) != 1 || !a.Disposed() {
		t.Fatalf("a still chained after the mix")
	}
	if rec.count("interrupt a") != 1 || rec.count("end a") != 1 || rec.count("dispose a") != 1 {
		t.Fatalf("a callbacks = %v", rec.log)
	}
}

func TestTrackEndCompletesOnce(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 0, 1, 90))

	e, _ := s.SetAnimation(0, "a", false)
	e.TrackEnd = e.Animation.Duration

	for i := 0; i < 3; i++ {
		step(s, skel, 0.25)
	}
	if rec.count("complete a") != 0 {
		t.Fatalf("completed early: %v", rec.log)
	}

	step(s, skel, 0.5)
	want := []string{"start a", "complete a", "end a", "dispose a"}
	if !slices.Equal(rec.log, want) {
		t.Fatalf("callbacks = %v, want %v", rec.log, want)
	}
	if s.Current(0) != nil {
		t.Fatalf("track still playing")
	}

	for i := 0; i < 4; i++ {
		step(s, skel, 0.25)
	}
	if rec.count("complete a") != 1 {
		t.Fatalf("complete fired %d times", rec.count("complete a"))
	}
}

func TestLoopCompletesPerBoundary(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 0, 1, 90))
	s.SetAnimation(0, "a", true)

	for i := 0; i < 4; i++ {
		step(s, skel, 0.5)
	}
	if got := rec.count("complete a"); got != 2 {
		t.Fatalf("complete fired %d times, want 2", got)
	}
	if e := s.Current(0); !approx(e.AnimationTime(), 0) || !e.IsComplete() {
		t.Fatalf("animation time = %v", e.AnimationTime())
	}
}

func TestEventsDispatchInOrder(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, eventAnim(d, "steps", 1, 0.25, 0.75))
	s.SetAnimation(0, "steps", true)

	step(s, skel, 0.5)
	step(s, skel, 0.75)

	want := []string{
		"start steps",
		"event steps 0.25",
		"event steps 0.75",
		"complete steps",
		"event steps 0.25",
	}
	if !slices.Equal(rec.log, want) {
		t.Fatalf("callbacks = %v, want %v", rec.log, want)
	}
}

func TestEntryListenerRunsFirst(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 0))

	e, _ := s.SetAnimation(0, "a", false)
	e.SetListener(rec.listener("entry:"))
	step(s, skel, 0.1)

	if len(rec.log) < 2 || rec.log[0] != "entry:start a" || rec.log[1] != "start a" {
		t.Fatalf("callbacks = %v", rec.log)
	}

	s.ClearTrack(0)
	if s.EntryListener(e) != nil {
		t.Fatalf("entry listener kept after dispose")
	}
}

func TestClearTrackIsSynchronous(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 0), rotateAnim("b", 1, 0, 0))

	s.SetAnimation(0, "a", true)
	step(s, skel, 0.1)
	s.AddAnimation(0, "b", false, 0)
	rec.reset()

	s.ClearTrack(0)
	want := []string{"end a", "dispose a", "dispose b"}
	if !slices.Equal(rec.log, want) {
		t.Fatalf("callbacks = %v, want %v", rec.log, want)
	}
	if s.Current(0) != nil {
		t.Fatalf("track not cleared")
	}
	if s.Apply(skel) {
		t.Fatalf("apply reported work on cleared tracks")
	}
}

func TestListenerMayChangeAnimation(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 0), rotateAnim("b", 1, 0, 45))

	s.AddListener(&Listener{Complete: func(e *TrackEntry) {
		if e.Animation.Name == "a" {
			s.SetAnimation(0, "b", true)
		}
	}})
	s.SetAnimation(0, "a", false)
	step(s, skel, 1.25)

	if cur := s.Current(0); cur == nil || cur.Animation.Name != "b" {
		t.Fatalf("current = %v", cur)
	}
	if rec.count("interrupt a") != 1 || rec.count("end a") != 1 {
		t.Fatalf("callbacks = %v", rec.log)
	}
	step(s, skel, 0.1)
	if got := skel.Bones[armBone].Rotation; !approx(got, 45) {
		t.Fatalf("rotation = %v, want 45", got)
	}
}

func TestEmptyAnimationFadesToSetup(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 90))

	s.SetAnimation(0, "a", true)
	step(s, skel, 0.1)
	if got := skel.Bones[armBone].Rotation; !approx(got, 90) {
		t.Fatalf("rotation = %v, want 90", got)
	}

	if _, err := s.SetEmptyAnimation(0, 0.5); err != nil {
		t.Fatalf("set empty: %v", err)
	}
	step(s, skel, 0.25)
	if got := skel.Bones[armBone].Rotation; !approx(got, 45) {
		t.Fatalf("rotation halfway = %v, want 45", got)
	}
	step(s, skel, 0.25)
	if got := skel.Bones[armBone].Rotation; !approx(got, 0) {
		t.Fatalf("rotation after fade = %v, want setup 0", got)
	}
	step(s, skel, 0.25)
	if s.Current(0) != nil {
		t.Fatalf("track not cleared after fading out")
	}
	if rec.count("dispose <empty>") != 1 || rec.count("dispose a") != 1 {
		t.Fatalf("callbacks = %v", rec.log)
	}
}

func TestTracksLayerAdditively(t *testing.T) {
	d := testData(t)
	s, skel, _ := newTestState(t, d, rotateAnim("base", 1, 0, 30), rotateAnim("overlay", 1, 0, 10))

	s.SetAnimation(0, "base", true)
	overlay, _ := s.SetAnimation(1, "overlay", true)
	overlay.Alpha = 0.5
	step(s, skel, 0.1)

	if got := skel.Bones[armBone].Rotation; !approx(got, 35) {
		t.Fatalf("rotation = %v, want 30 + 10*0.5", got)
	}

	t.Run("replace", func(t *testing.T) {
		overlay.MixBlend = MixReplace
		step(s, skel, 0.1)
		if got := skel.Bones[armBone].Rotation; !approx(got, 20) {
			t.Fatalf("rotation = %v, want halfway between 30 and 10", got)
		}
	})
}

func TestEventThresholdGatesMixingOut(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, eventAnim(d, "steps", 1, 0.25, 0.75), rotateAnim("idle", 1, 0, 0))
	s.Data.DefaultMix = 1

	steps, _ := s.SetAnimation(0, "steps", true)
	step(s, skel, 0.5)
	s.SetAnimation(0, "idle", true)
	rec.reset()

	step(s, skel, 0.5)
	if rec.count("event steps 0.75") != 0 {
		t.Fatalf("mixing out entry fired events at the default threshold: %v", rec.log)
	}

	steps.EventThreshold = 1
	rec.reset()
	step(s, skel, 0.25)
	step(s, skel, 0.25)
	if rec.count("event steps 0.25") != 1 {
		t.Fatalf("events below threshold not fired: %v", rec.log)
	}
}

func TestDelayedCurrentWaits(t *testing.T) {
	d := testData(t)
	s, skel, rec := newTestState(t, d, rotateAnim("a", 1, 0, 90))

	e, _ := s.AddAnimation(0, "a", true, 0.5)
	step(s, skel, 0.25)
	if rec.count("start a") != 0 || e.TrackTime() != 0 {
		t.Fatalf("delayed entry started early: %v", rec.log)
	}
	step(s, skel, 0.5)
	if rec.count("start a") != 1 || !approx(e.TrackTime(), 0.25) {
		t.Fatalf("track time = %v, log %v", e.TrackTime(), rec.log)
	}
}

func TestStateTimeScale(t *testing.T) {
	d := testData(t)
	s, skel, _ := newTestState(t, d, rotateAnim("a", 2, 0, 0, 2, 90))
	s.TimeScale = 2
	e, _ := s.SetAnimation(0, "a", false)
	e.TimeScale = 0.5

	step(s, skel, 0.5)
	if !approx(e.TrackTime(), 0.5) {
		t.Fatalf("track time = %v, want 0.5", e.TrackTime())
	}
}

func TestLoneEntryFadesIn(t *testing.T) {
	d := testData(t)
	s, skel, _ := newTestState(t, d, rotateAnim("a", 1, 0, 40))

	e, _ := s.SetAnimation(0, "a", true)
	e.MixDuration = 1

	tests := []struct {
		name     string
		delta    float32
		mixTime  float32
		rotation float32
	}{
		{"first_apply", 0, 0, 0},
		{"half_way", 0.5, 0.5, 20},
		{"faded_in", 0.75, 1.25, 40},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			step(s, skel, tc.delta)
			if !approx(e.MixTime(), tc.mixTime) {
				t.Fatalf("mix time = %v, want %v", e.MixTime(), tc.mixTime)
			}
			if got := skel.Bones[armBone].Rotation; !approx(got, tc.rotation) {
				t.Fatalf("rotation = %v, want %v", got, tc.rotation)
			}
		})
	}
}

// swapData builds a root bone with "back" and "front" slots; back shows A in
// the setup pose and can switch to B.
func swapData(t *testing.T) *skeleton.Data {
	t.Helper()
	root := skeleton.NewBoneData(0, "root", nil)
	back := skeleton.NewSlotData(0, "back", root)
	back.AttachmentName = "A"
	front := skeleton.NewSlotData(1, "front", root)

	skin := skeleton.NewSkin("default")
	for _, name := range []string{"A", "B"} {
		r := skeleton.NewRegionAttachment(name)
		r.Width, r.Height = 2, 2
		r.UpdateOffset()
		skin.AddAttachment(0, name, r)
	}
	d := &skeleton.Data{
		Name:        "swap",
		Bones:       []*skeleton.BoneData{root},
		Slots:       []*skeleton.SlotData{back, front},
		Skins:       []*skeleton.Skin{skin},
		DefaultSkin: skin,
	}
	if err := d.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return d
}

func TestDiscreteThresholdsGateMixingOut(t *testing.T) {
	swapAnim := func() *Animation {
		att := NewAttachmentTimeline(0, 2)
		att.SetFrame(0, 0, "A")
		att.SetFrame(1, 1, "B")
		order := NewDrawOrderTimeline(2)
		order.SetFrame(0, 0, nil)
		order.SetFrame(1, 1, []int{1, 0})
		return NewAnimation("swap", []Timeline{att, order}, 2)
	}

	tests := []struct {
		name       string
		threshold  float32
		attachment string
		first      string
	}{
		{"below_threshold", 1, "B", "front"},
		{"at_threshold", 0.75, "A", "back"},
		{"default_threshold", 0, "A", "back"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := swapData(t)
			s, skel, _ := newTestState(t, d, swapAnim(), NewAnimation("idle", nil, 1))
			s.Data.DefaultMix = 1

			swap, _ := s.SetAnimation(0, "swap", false)
			swap.AttachmentThreshold = tc.threshold
			swap.DrawOrderThreshold = tc.threshold
			step(s, skel, 0.5)
			s.SetAnimation(0, "idle", true)

			// swap crosses its second keys while idle is 0.75 mixed in.
			step(s, skel, 0.75)
			if got := skel.Slots[0].Attachment().Name(); got != tc.attachment {
				t.Fatalf("attachment = %q, want %q", got, tc.attachment)
			}
			if got := skel.DrawOrder[0].Data.Name; got != tc.first {
				t.Fatalf("first in draw order = %q, want %q", got, tc.first)
			}
		})
	}
}

func TestListenerRemovedDuringDispatch(t *testing.T) {
	d := testData(t)
	s, skel, _ := newTestState(t, d, rotateAnim("a", 1, 0, 0))

	var calls []string
	second := &Listener{Start: func(e *TrackEntry) { calls = append(calls, "second") }}
	first := &Listener{Start: func(e *TrackEntry) {
		calls = append(calls, "first")
		s.RemoveListener(second)
	}}
	s.AddListener(first)
	s.AddListener(second)

	s.SetAnimation(0, "a", true)
	step(s, skel, 0.1)
	if !slices.Equal(calls, []string{"first"}) {
		t.Fatalf("calls = %v, want [first]", calls)
	}
}

func TestQueuedEntryHonoursTimeScale(t *testing.T) {
	d := testData(t)
	s, skel, _ := newTestState(t, d, rotateAnim("a", 1, 0, 0), rotateAnim("b", 1, 0, 0))
	s.Data.DefaultMix = 0.5

	a, _ := s.SetAnimation(0, "a", false)
	a.TimeScale = 2
	b, _ := s.AddAnimation(0, "b", false, 0)

	step(s, skel, 0.2)
	step(s, skel, 0.2)
	if s.Current(0) != a {
		t.Fatalf("b started early")
	}

	// a reaches 0.8 of track time, 0.3 past b's delay: 0.15 seconds ago.
	step(s, skel, 0.2)
	if s.Current(0) != b {
		t.Fatalf("b not promoted")
	}
	if !approx(b.TrackTime(), 0.35) {
		t.Fatalf("b track time = %v, want 0.35", b.TrackTime())
	}
	if !approx(b.MixTime(), 0.2) {
		t.Fatalf("b mix time = %v, want 0.2", b.MixTime())
	}
}
