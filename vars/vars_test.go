package vars

import "testing"

func TestStrToBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"Y", true, false},
		{" on ", true, false},
		{"0", false, false},
		{"No", false, false},
		{"", false, true},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		got, err := StrToBool(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: got error %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %v", tt.in, got)
		}
	}
}

func TestFirstNonZero(t *testing.T) {
	if v := FirstNonZero(0, 0, 3, 4); v != 3 {
		t.Fatalf("got %v", v)
	}
	if v := FirstNonZero[string](); v != "" {
		t.Fatalf("got %v", v)
	}
}
