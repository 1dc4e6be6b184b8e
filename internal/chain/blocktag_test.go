package chain

import "testing"

func TestNormalizeBlockTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "latest"},
		{"latest", "latest"},
		{"Latest", "latest"},
		{"PENDING", "pending"},
		{"earliest", "earliest"},
		{"safe", "safe"},
		{"finalized", "finalized"},
		{"0", "0x0"},
		{"255", "0xff"},
		{"12345678", "0xbc614e"},
		{"0xff", "0xff"},
		{"0xBC614E", "0xbc614e"},
	}
	for _, tc := range cases {
		got, err := NormalizeBlockTag(tc.in)
		if err != nil {
			t.Fatalf("NormalizeBlockTag(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("NormalizeBlockTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"0x", "0xzz", "-1", "ten", "1.5"} {
		if _, err := NormalizeBlockTag(bad); err == nil {
			t.Errorf("NormalizeBlockTag(%q): expected error", bad)
		}
	}
}

func TestIsNamedBlockTag(t *testing.T) {
	if !IsNamedBlockTag("latest") || !IsNamedBlockTag(" Pending ") {
		t.Error("named tags not detected")
	}
	if IsNamedBlockTag("0x10") || IsNamedBlockTag("12") {
		t.Error("concrete numbers reported as named tags")
	}
}
