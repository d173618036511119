package event

import (
	"testing"
	"time"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"Motion":             TypeMotion,
		"VideoMotion":        TypeMotion,
		"human":              TypePerson,
		"Person":             TypePerson,
		"Car":                TypeVehicle,
		"vehicle":            TypeVehicle,
		"FaceDetection":      TypeFace,
		"line_crossing":      TypeIntrusion,
		"RegionEntrance":     TypeIntrusion,
		"Intrusion":          TypeIntrusion,
		"":                   TypeMotion,
		" Glass Break ":      Type("Glass Break"),
		"humanDetected":      TypePerson,
		"LineCrossDetection": TypeIntrusion,
		"IVSMotion":          TypeMotion,
		"scarecrow":          Type("scarecrow"),
		"cardholder":         Type("cardholder"),
		"interface_alarm":    Type("interface_alarm"),
		"surface":            Type("surface"),
	}
	for in, want := range cases {
		if got := ParseType(in); got != want {
			t.Errorf("ParseType(%q) = %q, want %q", in, got, want)
		}
	}
	if Type("Glass Break").Known() || ParseType("scarecrow").Known() {
		t.Error("custom type reported as known")
	}
}

func TestNormalizeConfidence(t *testing.T) {
	cases := map[float64]int{
		0:    0,
		0.5:  50,
		1:    100,
		87:   87,
		87.6: 88,
		150:  100,
		-3:   0,
	}
	for in, want := range cases {
		if got := NormalizeConfidence(in); got != want {
			t.Errorf("NormalizeConfidence(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestStamps(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Type: TypeMotion, Timestamp: &now},
		{Type: TypePerson},
		{Type: TypeFace, Timestamp: &time.Time{}},
	}
	if got := Stamps(events); len(got) != 1 || !got[0].Equal(now) {
		t.Fatalf("Stamps = %v", got)
	}
	if events[1].Seekable() {
		t.Fatal("event without timestamp is not seekable")
	}
}
