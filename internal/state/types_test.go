package state

import (
	"encoding/json"
	"testing"
)

func TestFarmwareManifestDecodeLegacy(t *testing.T) {
	raw := []byte(`{
		"name": "plant-detection",
		"author": "FarmBot, Inc.",
		"url": "https://example.com/manifest.json",
		"min_os_version_major": 6,
		"config": [{"name": "blur", "label": "Blur", "value": "15"}]
	}`)

	var m FarmwareManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !m.IsLegacy() {
		t.Fatal("manifest without farmware_manifest_version not classified as legacy")
	}
	if m.Name() != "plant-detection" {
		t.Errorf("Name() = %q", m.Name())
	}
	if len(m.Legacy.Config) != 1 || m.Legacy.Config[0].Name != "blur" {
		t.Errorf("config = %+v", m.Legacy.Config)
	}
}

func TestFarmwareManifestDecodeV2(t *testing.T) {
	raw := []byte(`{
		"farmware_manifest_version": "2.0.0",
		"package": "take-photo",
		"package_version": "1.4.2",
		"language": "python",
		"config": {"0": {"name": "delay", "label": "Delay", "value": "1"}}
	}`)

	var m FarmwareManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m.IsLegacy() {
		t.Fatal("versioned manifest classified as legacy")
	}
	if m.Name() != "take-photo" {
		t.Errorf("Name() = %q", m.Name())
	}
	if m.V2.ManifestVersion != "2.0.0" {
		t.Errorf("manifest version = %q", m.V2.ManifestVersion)
	}
}

func TestFarmwareManifestRoundTrip(t *testing.T) {
	m := FarmwareManifest{
		V2: &ManifestV2{ManifestVersion: "2.0.0", Package: "take-photo"},
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back FarmwareManifest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.IsLegacy() || back.V2.Package != "take-photo" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestTreeDecodeMixedManifests(t *testing.T) {
	raw := []byte(`{
		"process_info": {
			"farmwares": {
				"old-tool": {"name": "old-tool", "author": "someone"},
				"new-tool": {"farmware_manifest_version": "2.0.0", "package": "new-tool"}
			}
		}
	}`)

	var tree Tree
	if err := json.Unmarshal(raw, &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !tree.ProcessInfo.Farmwares["old-tool"].IsLegacy() {
		t.Error("old-tool should be legacy")
	}
	if tree.ProcessInfo.Farmwares["new-tool"].IsLegacy() {
		t.Error("new-tool should be v2")
	}
}

func TestTreeCopyNil(t *testing.T) {
	var tree *Tree
	if tree.Copy() != nil {
		t.Error("copy of nil tree should be nil")
	}
}
