package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStripPrefixInvertsApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		key    string
	}{
		{prefix: "", key: "user/file.pdf"},
		{prefix: "root", key: "user/file.pdf"},
		{prefix: "root/sub", key: "user/file.png"},
	}

	for _, tt := range tests {
		full := applyPrefix(tt.prefix, tt.key)
		if got := stripPrefix(tt.prefix, full); got != tt.key {
			t.Fatalf("stripPrefix(%q, %q) = %q, want %q", tt.prefix, full, got, tt.key)
		}
	}
}
