package naming

import "testing"

func TestLayerAndMaskName(t *testing.T) {
	if got := LayerName("Metal", 3); got != "Metal_3" {
		t.Errorf("LayerName = %q, want %q", got, "Metal_3")
	}
	if got := MaskName("Metal", 3, 1); got != "Metal_3_1" {
		t.Errorf("MaskName = %q, want %q", got, "Metal_3_1")
	}
	if got := Provisional(MaskName("Metal", 0, 0)); got != "Metal_0_0~" {
		t.Errorf("Provisional = %q, want %q", got, "Metal_0_0~")
	}
}

func TestNamesAreInjective(t *testing.T) {
	seen := make(map[string][2]int)
	for l := 0; l < 12; l++ {
		name := LayerName("Mat", l)
		if prev, ok := seen[name]; ok {
			t.Fatalf("%q produced by %v and layer %d", name, prev, l)
		}
		seen[name] = [2]int{l, -1}
		for m := 0; m < 12; m++ {
			name := MaskName("Mat", l, m)
			if prev, ok := seen[name]; ok {
				t.Fatalf("%q produced by %v and (%d,%d)", name, prev, l, m)
			}
			seen[name] = [2]int{l, m}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		material string
		input    string
		want     Parsed
		ok       bool
	}{
		{"layer", "Metal", "Metal_2", Parsed{Layer: 2, Mask: -1}, true},
		{"mask", "Metal", "Metal_2_7", Parsed{Layer: 2, Mask: 7}, true},
		{"provisional mask", "Metal", "Metal_0_1~", Parsed{Layer: 0, Mask: 1, Provisional: true}, true},
		{"underscored material", "Old_Metal", "Old_Metal_1_0", Parsed{Layer: 1, Mask: 0}, true},
		{"other material", "Metal", "Wood_1", Parsed{}, false},
		{"bare suffix", "Metal", "Metal_~", Parsed{}, false},
		{"not a number", "Metal", "Metal_a", Parsed{}, false},
		{"leading zero", "Metal", "Metal_01", Parsed{}, false},
		{"negative", "Metal", "Metal_-1", Parsed{}, false},
		{"too many parts", "Metal", "Metal_1_2_3", Parsed{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.material, tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsProvisional(t *testing.T) {
	if !IsProvisional("Metal_0~") {
		t.Error("IsProvisional(Metal_0~) = false, want true")
	}
	if IsProvisional("Metal_0") {
		t.Error("IsProvisional(Metal_0) = true, want false")
	}
}
