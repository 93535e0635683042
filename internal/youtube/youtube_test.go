package youtube

import "testing"

func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bare id", input: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "bare id with spaces", input: "  dQw4w9WgXcQ \n", want: "dQw4w9WgXcQ"},
		{name: "watch url", input: "https://youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url with params", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: "dQw4w9WgXcQ"},
		{name: "short url", input: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "embed url", input: "https://www.youtube.com/embed/a_B-c1D2e3F", want: "a_B-c1D2e3F"},
		{name: "not a valid id", input: "not a valid id", want: ""},
		{name: "too short", input: "abc123", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractID(tt.input); got != tt.want {
				t.Errorf("ExtractID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	if !IsValidID("dQw4w9WgXcQ") {
		t.Error("Expected valid id")
	}
	for _, bad := range []string{"", "dQw4w9WgXc", "dQw4w9WgXcQQ", "dQw4w9WgX Q", "dQw4w9WgX!Q"} {
		if IsValidID(bad) {
			t.Errorf("Expected %q to be invalid", bad)
		}
	}
}

func TestThumbnailURL(t *testing.T) {
	if got := ThumbnailURL("dQw4w9WgXcQ"); got != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("unexpected thumbnail %s", got)
	}
	if got := ThumbnailURL(""); got != "" {
		t.Errorf("Expected empty thumbnail, got %s", got)
	}
}
