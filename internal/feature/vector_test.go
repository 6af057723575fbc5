package feature

import (
	"testing"
)

// TestVectorFloat tests numeric conversion of every supported value type.
func TestVectorFloat(t *testing.T) {
	t.Parallel()

	v := New()
	v.SetBool("yes", true)
	v.SetBool("no", false)
	v.SetInt("count", 7)
	v.SetFloat("ratio", 0.25)
	v["text"] = "not a number"

	tests := []struct {
		name string
		key  string
		want float64
	}{
		{name: "true reads as 1", key: "yes", want: 1},
		{name: "false reads as 0", key: "no", want: 0},
		{name: "int converts", key: "count", want: 7},
		{name: "float passes through", key: "ratio", want: 0.25},
		{name: "unsupported type reads as 0", key: "text", want: 0},
		{name: "missing key reads as 0", key: "absent", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := v.Float(tt.key); got != tt.want {
				t.Errorf("Float(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

// TestVectorSelect tests schema ordering with missing keys.
func TestVectorSelect(t *testing.T) {
	t.Parallel()

	v := New()
	v.SetInt(URLLength, 40)
	v.SetBool(HasIP, true)

	got := v.Select([]string{HasIP, "missing", URLLength})
	want := []float64{1, 0, 40}

	if len(got) != len(want) {
		t.Fatalf("Select returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// TestVectorMerge tests that later values overwrite earlier ones.
func TestVectorMerge(t *testing.T) {
	t.Parallel()

	a := New()
	a.SetInt(NumDots, 1)
	a.SetBool(HasForms, false)

	b := New()
	b.SetBool(HasForms, true)

	a.Merge(b)

	if a.Int(NumDots) != 1 {
		t.Errorf("NumDots = %d, want 1", a.Int(NumDots))
	}
	if !a.Bool(HasForms) {
		t.Error("expected HasForms to be overwritten with true")
	}
	if names := a.Names(); len(names) != 2 || names[0] != HasForms {
		t.Errorf("Names() = %v, want sorted [has_forms num_dots]", names)
	}
}
