package prefabs

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/milk9111/spine/anim"
	"github.com/milk9111/spine/skeleton"
	"gopkg.in/yaml.v3"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func decodeSpec(t *testing.T, src string) *SkeletonSpec {
	t.Helper()
	var spec SkeletonSpec
	if err := yaml.Unmarshal([]byte(src), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &spec
}

func TestLoadSampleSkeleton(t *testing.T) {
	asset, err := LoadSkeleton("stickman.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := len(asset.Data.Bones); got != 10 {
		t.Fatalf("expected 10 bones, got %d", got)
	}
	for i, b := range asset.Data.Bones {
		if b.Parent != nil && b.Parent.Index >= i {
			t.Fatalf("bone %q ordered before its parent %q", b.Name, b.Parent.Name)
		}
	}
	if asset.Data.DefaultSkin == nil || asset.Data.DefaultSkin.Name != "default" {
		t.Fatalf("expected default skin, got %v", asset.Data.DefaultSkin)
	}

	want := []string{"hurt", "idle", "jump", "reach", "walk"}
	if got := asset.Library.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected animations %v, got %v", want, got)
	}

	walk, err := asset.Library.Find("walk")
	if err != nil {
		t.Fatal(err)
	}
	if walk.Duration != 1 {
		t.Fatalf("expected walk duration 1, got %v", walk.Duration)
	}
	if !walk.HasTimeline(anim.PropertyID{Type: anim.TimelineEvent}) {
		t.Fatalf("expected walk to key events")
	}

	inst, err := asset.NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	jump, _ := asset.Library.Find("jump")
	idle, _ := asset.Library.Find("idle")
	data := inst.State().Data
	if got := data.Mix(walk, jump); !approx(got, 0.1) {
		t.Fatalf("expected walk->jump mix 0.1, got %v", got)
	}
	if got := data.Mix(idle, walk); !approx(got, 0.2) {
		t.Fatalf("expected default mix 0.2, got %v", got)
	}
}

func TestSampleInstancesDoNotSharePose(t *testing.T) {
	asset, err := LoadSkeleton("stickman.yaml")
	if err != nil {
		t.Fatal(err)
	}
	a, err := asset.NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	b, err := asset.NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.SetAnimation(0, "walk", true); err != nil {
		t.Fatal(err)
	}
	a.Update(0.5)

	thigh := asset.Data.FindBoneIndex("thigh")
	if got := a.Skeleton.Bones[thigh].Rotation; !approx(got, -90+25) {
		t.Fatalf("expected animated thigh at -65, got %v", got)
	}
	if got := b.Skeleton.Bones[thigh].Rotation; !approx(got, -90) {
		t.Fatalf("expected untouched instance at setup -90, got %v", got)
	}
}

func TestBuildSkeletonErrors(t *testing.T) {
	const bones = `
bones:
  - name: root
  - name: arm
    parent: root
slots:
  - name: hand
    bone: arm
events:
  - name: step
`
	tests := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "unordered_keys",
			src: bones + `
animations:
  - name: swing
    bones:
      arm:
        rotate:
          - {time: 0.5, angle: 10}
          - {time: 0.2, angle: 20}
`,
			want: ErrInvalidKeyframeOrder,
		},
		{
			name: "duplicate_key_time",
			src: bones + `
animations:
  - name: step
    events:
      - {time: 0.5, name: step}
      - {time: 0.5, name: step}
`,
			want: anim.ErrInvalidKeyframeOrder,
		},
		{
			name: "unknown_parent",
			src: `
bones:
  - name: arm
    parent: missing
`,
			want: ErrUnknownReference,
		},
		{
			name: "unknown_slot_bone",
			src: `
bones:
  - name: root
slots:
  - name: hand
    bone: missing
`,
			want: ErrUnknownReference,
		},
		{
			name: "unknown_animated_bone",
			src: bones + `
animations:
  - name: swing
    bones:
      leg:
        rotate:
          - {time: 0, angle: 10}
`,
			want: ErrUnknownReference,
		},
		{
			name: "unknown_event",
			src: bones + `
animations:
  - name: swing
    events:
      - {time: 0, name: jump}
`,
			want: ErrUnknownReference,
		},
		{
			name: "duration_before_last_key",
			src: bones + `
animations:
  - name: swing
    duration: 0.5
    bones:
      arm:
        rotate:
          - {time: 0, angle: 0}
          - {time: 1, angle: 10}
`,
			want: anim.ErrInvalidDuration,
		},
		{
			name: "bone_cycle",
			src: `
bones:
  - name: a
    parent: b
  - name: b
    parent: a
`,
			want: skeleton.ErrInvalidHierarchy,
		},
		{
			name: "unknown_transform_mode",
			src: `
bones:
  - name: root
    transform: sideways
`,
			want: ErrInvalidSpec,
		},
		{
			name: "linked_mesh_without_parent_mesh",
			src: bones + `
skins:
  - name: default
    attachments:
      hand:
        glove:
          type: linked_mesh
          parent: missing
`,
			want: ErrUnknownReference,
		},
		{
			name: "deform_overflow",
			src: bones + `
skins:
  - name: default
    attachments:
      hand:
        palm:
          type: mesh
          vertices: [0, 0, 1, 0, 1, 1]
animations:
  - name: squeeze
    deform:
      default:
        hand:
          palm:
            - {time: 0, offset: 4, vertices: [1, 1, 1]}
`,
			want: ErrInvalidSpec,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := BuildSkeleton(decodeSpec(t, tc.src))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBuildSkeletonTimelines(t *testing.T) {
	spec := decodeSpec(t, `
bones:
  - name: root
  - name: arm
    parent: root
    x: 10
    rotation: 30
slots:
  - name: hand
    bone: arm
    color: "#ffffff"
    attachment: open
skins:
  - name: default
    attachments:
      hand:
        open: {width: 4, height: 4}
        fist: {width: 3, height: 3}
        skin:
          type: mesh
          vertices: [0, 0, 2, 0, 2, 2, 0, 2]
        glove:
          type: linked_mesh
          parent: skin
animations:
  - name: grab
    bones:
      arm:
        rotate:
          - {time: 0, angle: 0, curve: stepped}
          - {time: 1, angle: 90}
        translate:
          - {time: 0, x: 5}
          - {time: 1, x: 5, y: 5}
    slots:
      hand:
        attachment:
          - {time: 0.5, name: fist}
          - {time: 1, name: ""}
        color:
          - {time: 0, color: "#ff000080"}
    deform:
      default:
        hand:
          skin:
            - {time: 0, offset: 2, vertices: [1, 1]}
`)
	data, lib, err := BuildSkeleton(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	glove, ok := data.DefaultSkin.Attachment(data.FindSlotIndex("hand"), "glove").(*skeleton.LinkedMeshAttachment)
	if !ok || glove.ParentMesh() == nil || len(glove.Vertices) != 8 {
		t.Fatalf("expected glove linked to skin mesh, got %#v", glove)
	}

	grab, err := lib.Find("grab")
	if err != nil {
		t.Fatal(err)
	}
	if grab.Duration != 1 {
		t.Fatalf("expected duration from last key, got %v", grab.Duration)
	}

	skel, err := skeleton.New(data)
	if err != nil {
		t.Fatal(err)
	}
	arm := skel.FindBone("arm")
	hand := skel.FindSlot("hand")

	tests := []struct {
		name  string
		time  float32
		check func(t *testing.T)
	}{
		{
			name: "stepped_rotate_holds_first_key",
			time: 0.9,
			check: func(t *testing.T) {
				if !approx(arm.Rotation, 30) {
					t.Fatalf("expected stepped rotation 30, got %v", arm.Rotation)
				}
				if !approx(arm.X, 15) || !approx(arm.Y, 4.5) {
					t.Fatalf("expected translate (15, 4.5), got (%v, %v)", arm.X, arm.Y)
				}
				if hand.Attachment() == nil || hand.Attachment().Name() != "fist" {
					t.Fatalf("expected fist attachment, got %v", hand.Attachment())
				}
				if !approx(hand.Color.R, 1) || !approx(hand.Color.G, 0) || !approx(hand.Color.A, 128.0/255) {
					t.Fatalf("expected keyed color, got %+v", hand.Color)
				}
			},
		},
		{
			name: "last_key_clears_attachment",
			time: 1,
			check: func(t *testing.T) {
				if !approx(arm.Rotation, 120) {
					t.Fatalf("expected rotation 120, got %v", arm.Rotation)
				}
				if hand.Attachment() != nil {
					t.Fatalf("expected cleared attachment, got %v", hand.Attachment())
				}
			},
		},
	}

	last := float32(-1)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			grab.Apply(skel, last, tc.time, false, nil, 1, anim.MixSetup, anim.MixIn)
			last = tc.time
			tc.check(t)
		})
	}
}

func TestDrawOrderOffsets(t *testing.T) {
	data := &skeleton.Data{}
	root := skeleton.NewBoneData(0, "root", nil)
	data.Bones = []*skeleton.BoneData{root}
	for i, name := range []string{"a", "b", "c", "d"} {
		data.Slots = append(data.Slots, skeleton.NewSlotData(i, name, root))
	}

	tests := []struct {
		name    string
		offsets []DrawOrderOffset
		want    []int
		err     error
	}{
		{"setup", nil, nil, nil},
		{"last_to_front", []DrawOrderOffset{{Slot: "d", Offset: -3}}, []int{3, 0, 1, 2}, nil},
		{"swap_middle", []DrawOrderOffset{{Slot: "b", Offset: 1}}, []int{0, 2, 1, 3}, nil},
		{"two_moves", []DrawOrderOffset{{Slot: "c", Offset: -2}, {Slot: "a", Offset: 3}}, []int{2, 1, 3, 0}, nil},
		{"out_of_range", []DrawOrderOffset{{Slot: "a", Offset: -1}}, nil, ErrInvalidSpec},
		{"unknown_slot", []DrawOrderOffset{{Slot: "z", Offset: 1}}, nil, ErrUnknownReference},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := drawOrder(data, tc.offsets)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCurveSpec(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    CurveSpec
		wantErr bool
	}{
		{"linear", `curve: linear`, CurveSpec{}, false},
		{"stepped", `curve: stepped`, CurveSpec{Stepped: true}, false},
		{"bezier", `curve: [0.25, 0, 0.75, 1]`, CurveSpec{Bezier: []float32{0.25, 0, 0.75, 1}}, false},
		{"short_bezier", `curve: [0.25, 0]`, CurveSpec{}, true},
		{"unknown", `curve: wobbly`, CurveSpec{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var key RotateKey
			err := yaml.Unmarshal([]byte(tc.src), &key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(key.Curve, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, key.Curve)
			}
		})
	}
}

func TestYAMLColorHex(t *testing.T) {
	var c YAMLColor
	if err := yaml.Unmarshal([]byte(`"#ff000080"`), &c); err != nil {
		t.Fatal(err)
	}
	sc := c.SkeletonColor()
	if !approx(sc.R, 1) || !approx(sc.G, 0) || !approx(sc.A, 128.0/255) {
		t.Fatalf("unexpected color %+v", sc)
	}
	if got := Hex(sc); got != "#ff000080" {
		t.Fatalf("expected #ff000080, got %s", got)
	}
	if got := (YAMLColor{}).SkeletonColor(); got != skeleton.White {
		t.Fatalf("expected unset color to be white, got %+v", got)
	}
}

func TestSceneSpec(t *testing.T) {
	scene, err := LoadSceneSpec("scene.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(scene.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(scene.Entities))
	}
	sk, err := DecodeComponentSpec[SkeletonComponentSpec](scene.Entities[1].Components["skeleton"])
	if err != nil {
		t.Fatal(err)
	}
	if sk.File != "stickman.yaml" || sk.Skin != "armored" || len(sk.Tracks) != 2 || !sk.Tracks[1].Queue {
		t.Fatalf("unexpected skeleton component %+v", sk)
	}
	if _, err := LoadScript("stickman.tengo"); err != nil {
		t.Fatalf("expected bundled script: %v", err)
	}
}
