package vector

import "testing"

func TestVectorLiteral(t *testing.T) {
	got := vectorLiteral([]float32{0.25, -1, 3})
	want := "[0.250000,-1.000000,3.000000]"
	if got != want {
		t.Fatalf("vectorLiteral = %q, want %q", got, want)
	}
	if empty := vectorLiteral(nil); empty != "[]" {
		t.Fatalf("vectorLiteral(nil) = %q, want []", empty)
	}
}
