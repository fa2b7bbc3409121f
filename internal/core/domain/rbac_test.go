package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"viewer", RoleViewer, false},
		{"admin", RoleAdmin, false},
		{"", "", true},
		{"owner", "", true},
		{"Admin", "", true},
		{"ADMIN", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRole(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRole(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
