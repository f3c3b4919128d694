package embed

import "testing"

func TestResolver_Resolve(t *testing.T) {
	r, err := NewDefaultResolver()
	if err != nil {
		t.Fatalf("NewDefaultResolver() error = %v", err)
	}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"youtube watch without scheme", "youtube.com/watch?v=abc_-12", "https://www.youtube.com/embed/abc_-12", true},
		{"youtube watch with extra params", "https://m.youtube.com/watch?feature=share&v=XyZ", "https://www.youtube.com/embed/XyZ", true},
		{"youtu.be short link", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"vimeo", "https://vimeo.com/76979871", "https://player.vimeo.com/video/76979871", true},
		{"surrounding whitespace", "  https://vimeo.com/1  ", "https://player.vimeo.com/video/1", true},
		{"vimeo without digits", "https://vimeo.com/channels", "", false},
		{"vimeo id followed by letters", "https://vimeo.com/123abc", "", false},
		{"vimeo with query", "https://vimeo.com/123?share=copy", "https://player.vimeo.com/video/123", true},
		{"vimeo with trailing path", "https://vimeo.com/123/abcdef", "https://player.vimeo.com/video/123", true},
		{"unknown host", "https://example.com/video.mp4", "", false},
		{"youtube lookalike", "https://youtube.com.evil.example/watch?v=abc", "", false},
		{"javascript url", "javascript:alert(1)", "", false},
		{"empty", "", "", false},
		{"garbage", "%%%not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if ok && !r.AllowedEmbedHost(got) {
				t.Errorf("resolved url %q is not on an allowed host", got)
			}
		})
	}
}

func TestResolver_AllowedEmbedHost(t *testing.T) {
	r, err := NewDefaultResolver()
	if err != nil {
		t.Fatalf("NewDefaultResolver() error = %v", err)
	}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/embed/abc", true},
		{"https://player.vimeo.com/video/1", true},
		{"https://WWW.YOUTUBE.COM/embed/abc", true},
		{"http://www.youtube.com/embed/abc", false},
		{"https://youtube.com/embed/abc", false},
		{"https://evil.example/embed/abc", false},
		{"javascript:alert(1)", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := r.AllowedEmbedHost(tt.url); got != tt.want {
				t.Errorf("AllowedEmbedHost(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestNewResolver_RejectsBadPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern HostPattern
	}{
		{"invalid regex", HostPattern{Name: "x", Pattern: "(", Template: "https://a.example/{id}"}},
		{"no capture group", HostPattern{Name: "x", Pattern: "a", Template: "https://a.example/{id}"}},
		{"no placeholder", HostPattern{Name: "x", Pattern: "(a)", Template: "https://a.example/"}},
		{"http template", HostPattern{Name: "x", Pattern: "(a)", Template: "http://a.example/{id}"}},
		{"relative template", HostPattern{Name: "x", Pattern: "(a)", Template: "/embed/{id}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewResolver([]HostPattern{tt.pattern}); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
