package schema

import "testing"

func TestJSONArrayScanNilAndEmpty(t *testing.T) {
	var a JSONArray
	if err := a.Scan(nil); err != nil || a == nil || len(a) != 0 {
		t.Fatalf("scan nil: a=%v err=%v", a, err)
	}
	if err := a.Scan(""); err != nil || len(a) != 0 {
		t.Fatalf("scan empty: a=%v err=%v", a, err)
	}
	if err := a.Scan([]byte(`["composition","lighting"]`)); err != nil || len(a) != 2 {
		t.Fatalf("scan bytes: a=%v err=%v", a, err)
	}
}

func TestJSONArrayValueNil(t *testing.T) {
	var a JSONArray
	v, err := a.Value()
	if err != nil || v != "[]" {
		t.Fatalf("value=%v err=%v, want []", v, err)
	}
}

func TestHobbyMetaScan(t *testing.T) {
	var m HobbyMeta
	if err := m.Scan(`{"subskills":["chords"],"level_thresholds":[12,26]}`); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(m.Subskills) != 1 || len(m.LevelThresholds) != 2 || m.LevelThresholds[1] != 26 {
		t.Fatalf("meta=%+v", m)
	}
	if err := m.Scan(nil); err != nil || len(m.LevelThresholds) != 0 {
		t.Fatalf("scan nil should reset: %+v err=%v", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Fatalf("scan int should fail")
	}
}
