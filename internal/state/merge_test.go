package state

import (
	"encoding/json"
	"reflect"
	"testing"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func i64(v int64) *int64     { return &v }
func b(v bool) *bool         { return &v }
func str(v string) *string   { return &v }

func TestMergeIdempotent(t *testing.T) {
	delta := &Tree{
		McuParams: McuParams{"movement_max_spd_x": f64(400)},
		Pins:      Pins{13: {Mode: i(0), Value: f64(1)}},
		LocationData: &LocationData{
			Position: &AxisValues{X: f64(120), Y: f64(80), Z: f64(-10)},
		},
	}

	tree := &Tree{}
	merge(tree, delta)
	once := tree.Copy()

	merge(tree, delta)

	if !reflect.DeepEqual(tree, once) {
		t.Errorf("applying the same delta twice changed the tree:\nonce:  %+v\ntwice: %+v", once, tree)
	}
}

func TestMergeNeverErases(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		Pins: Pins{1: {Mode: i(0), Value: f64(5)}},
	})
	merge(tree, &Tree{
		LocationData: &LocationData{Position: &AxisValues{X: f64(10)}},
	})

	pin, ok := tree.Pins[1]
	if !ok {
		t.Fatal("pin 1 erased by unrelated delta")
	}
	if pin.Mode == nil || *pin.Mode != 0 || pin.Value == nil || *pin.Value != 5 {
		t.Errorf("pin 1 = %+v, want mode 0 value 5", pin)
	}
	if tree.LocationData.Position.X == nil || *tree.LocationData.Position.X != 10 {
		t.Error("location delta not applied")
	}
}

func TestMergePinStateFieldwise(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{Pins: Pins{7: {Mode: i(1)}}})
	merge(tree, &Tree{Pins: Pins{7: {Value: f64(255)}}})

	pin := tree.Pins[7]
	if pin.Mode == nil || *pin.Mode != 1 {
		t.Errorf("pin mode = %v, want 1", pin.Mode)
	}
	if pin.Value == nil || *pin.Value != 255 {
		t.Errorf("pin value = %v, want 255", pin.Value)
	}
}

func TestMergeAxesPartial(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		LocationData: &LocationData{Position: &AxisValues{X: f64(1), Y: f64(2), Z: f64(3)}},
	})
	// Move on X only; Y and Z stay known.
	merge(tree, &Tree{
		LocationData: &LocationData{Position: &AxisValues{X: f64(100)}},
	})

	pos := tree.LocationData.Position
	if *pos.X != 100 || *pos.Y != 2 || *pos.Z != 3 {
		t.Errorf("position = {%v %v %v}, want {100 2 3}", *pos.X, *pos.Y, *pos.Z)
	}
}

func TestMergeJobProgress(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		Jobs: Jobs{
			"firmware.hex": {Unit: "percent", Status: JobWorking, Percent: f64(10)},
		},
	})
	merge(tree, &Tree{
		Jobs: Jobs{
			"firmware.hex": {Status: JobComplete, Percent: f64(100)},
		},
	})

	job := tree.Jobs["firmware.hex"]
	if job.Unit != "percent" {
		t.Errorf("unit = %q, want percent (erased by status update)", job.Unit)
	}
	if job.Status != JobComplete {
		t.Errorf("status = %q, want complete", job.Status)
	}
	if job.Percent == nil || *job.Percent != 100 {
		t.Errorf("percent = %v, want 100", job.Percent)
	}
}

func TestMergeByteJob(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		Jobs: Jobs{
			"image.jpg": {Unit: "bytes", Status: JobWorking, Bytes: i64(2048)},
		},
	})

	job := tree.Jobs["image.jpg"]
	if job.Unit != "bytes" || job.Bytes == nil || *job.Bytes != 2048 {
		t.Errorf("byte job = %+v", job)
	}
}

func TestMergeAlerts(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		Alerts: Alerts{
			"a1": {CreatedAt: i64(1700000000), ProblemTag: "farmbot_os.firmware.missing", Priority: i(100), UUID: "uuid-1"},
		},
	})
	merge(tree, &Tree{
		Alerts: Alerts{
			"a2": {CreatedAt: i64(1700000100), ProblemTag: "api.seed_data.missing", Priority: i(300), UUID: "uuid-2"},
		},
	})

	if len(tree.Alerts) != 2 {
		t.Fatalf("alerts = %d entries, want 2", len(tree.Alerts))
	}
	if tree.Alerts["a1"].ProblemTag != "farmbot_os.firmware.missing" {
		t.Error("first alert lost after second merge")
	}
}

func TestMergeUserEnvOptionalValues(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{UserEnv: UserEnv{"CAMERA": str("USB"), "LAST_CLIENT_CONNECTED": nil}})

	if v, ok := tree.UserEnv["CAMERA"]; !ok || v == nil || *v != "USB" {
		t.Errorf("CAMERA = %v", v)
	}
	if v, ok := tree.UserEnv["LAST_CLIENT_CONNECTED"]; !ok || v != nil {
		t.Errorf("valueless env entry = %v, want present with nil value", v)
	}
}

func TestMergeManifestReplacedWhole(t *testing.T) {
	tree := &Tree{}
	merge(tree, &Tree{
		ProcessInfo: &ProcessInfo{
			Farmwares: map[string]FarmwareManifest{
				"take-photo": {Legacy: &LegacyManifest{Name: "take-photo", Author: "FarmBot, Inc."}},
			},
		},
	})
	merge(tree, &Tree{
		ProcessInfo: &ProcessInfo{
			Farmwares: map[string]FarmwareManifest{
				"take-photo": {V2: &ManifestV2{ManifestVersion: "2.0.0", Package: "take-photo", PackageVersion: "1.4.2"}},
			},
		},
	})

	manifest := tree.ProcessInfo.Farmwares["take-photo"]
	if manifest.IsLegacy() {
		t.Fatal("manifest still legacy after v2 update")
	}
	if manifest.Legacy != nil {
		t.Error("legacy variant not cleared by replacement")
	}
	if manifest.V2.PackageVersion != "1.4.2" {
		t.Errorf("package version = %q", manifest.V2.PackageVersion)
	}
}

func TestMergeFromJSONDelta(t *testing.T) {
	raw := []byte(`{
		"pins": {"13": {"mode": 0, "value": 1}},
		"informational_settings": {"busy": true, "sync_status": "syncing", "wifi_level": -52},
		"gpio_registry": {"16": "Lights"}
	}`)

	var delta Tree
	if err := json.Unmarshal(raw, &delta); err != nil {
		t.Fatalf("unmarshal delta: %v", err)
	}

	tree := &Tree{
		InformationalSettings: &InformationalSettings{NodeName: str("farmbot@device_42")},
	}
	merge(tree, &delta)

	if tree.Pins[13].Value == nil || *tree.Pins[13].Value != 1 {
		t.Errorf("pin 13 = %+v", tree.Pins[13])
	}
	info := tree.InformationalSettings
	if info.Busy == nil || !*info.Busy {
		t.Error("busy flag not merged")
	}
	if info.NodeName == nil || *info.NodeName != "farmbot@device_42" {
		t.Error("node name erased by delta that omitted it")
	}
	if info.WifiLevel == nil || *info.WifiLevel != -52 {
		t.Errorf("wifi level = %v", info.WifiLevel)
	}
	if tree.GpioRegistry[16] != "Lights" {
		t.Errorf("gpio registry = %v", tree.GpioRegistry)
	}
}

func TestMergeDoesNotAliasDelta(t *testing.T) {
	value := f64(5)
	delta := &Tree{Pins: Pins{1: {Value: value}}}

	tree := &Tree{}
	merge(tree, delta)

	*value = 99
	if *tree.Pins[1].Value != 5 {
		t.Error("merged tree aliases the delta's memory")
	}
}
