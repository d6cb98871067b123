package compose

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aditya493/linkedin-devops-automation/source"
)

func sampleItems() []source.ContentCandidate {
	return []source.ContentCandidate{
		{
			Title:       "Kubernetes 1.33 ships sidecar containers",
			Summary:     "The long-awaited sidecar lifecycle lands in stable.",
			Link:        "https://blog.example/k8s-133",
			Tags:        []string{"kubernetes"},
			PublishedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			Title:   "Terraform state encryption arrives",
			Summary: "State files can now be encrypted at rest natively.",
			Link:    "https://blog.example/tf-state",
		},
	}
}

func TestBuildDeterministicForSeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, err := New(nil, Config{}, 42).Build(ctx, FormatDigest, "The 2am pager taught me this.", sampleItems())
	if err != nil {
		t.Fatalf("build a: %v", err)
	}
	b, err := New(nil, Config{}, 42).Build(ctx, FormatDigest, "The 2am pager taught me this.", sampleItems())
	if err != nil {
		t.Fatalf("build b: %v", err)
	}
	if a != b {
		t.Fatal("same seed and inputs must produce identical posts")
	}
}

func TestBuildAllFormats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, format := range DefaultFormats {
		c := New(nil, Config{}, 7)
		text, err := c.Build(ctx, format, "persona line here", sampleItems())
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if len(text) > DefaultMaxChars {
			t.Errorf("format %s: %d chars over limit", format, len(text))
		}
		if !strings.Contains(text, "persona line here") {
			t.Errorf("format %s: persona line missing", format)
		}
		if !strings.Contains(text, "#") {
			t.Errorf("format %s: no hashtags", format)
		}
	}
}

func TestBuildUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{}, 1).Build(context.Background(), Format("haiku"), "", sampleItems())
	if err == nil {
		t.Fatal("unknown format must error")
	}
}

func TestPickFormatForced(t *testing.T) {
	t.Parallel()

	c := New(nil, Config{ForceFormat: FormatHotTake}, 1)
	for i := 0; i < 5; i++ {
		if got := c.PickFormat(); got != FormatHotTake {
			t.Fatalf("forced format ignored: %s", got)
		}
	}
}

func TestHashtagsPreferContextTags(t *testing.T) {
	t.Parallel()

	c := New(nil, Config{MaxHashtags: 3}, 9)
	got := c.hashtags(sampleItems())
	if !strings.HasPrefix(got, "#Kubernetes") {
		t.Fatalf("context tag should lead: %q", got)
	}
	if n := len(strings.Fields(got)); n != 3 {
		t.Fatalf("got %d hashtags, want 3", n)
	}
}

func TestClipPreservesHashtags(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("word ", 60)
	text := body + "\n#DevOps\n#SRE"
	got := Clip(text, 120, true)
	if len(got) > 120 {
		t.Fatalf("clipped to %d chars, want <= 120", len(got))
	}
	if !strings.HasSuffix(got, "#DevOps\n#SRE") {
		t.Fatalf("hashtags lost: %q", got)
	}
}

func TestClipShortTextUntouched(t *testing.T) {
	t.Parallel()

	if got := Clip("short", 100, true); got != "short" {
		t.Fatalf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "   \n ", true},
		{"hashtags only", "#a\n#b\n#c\n#d", true},
		{"two lines", "first line\nsecond line", true},
		{"valid", "first insight line\nsecond insight line\nthird insight line\n#DevOps", false},
		{"repetitive", strings.Repeat("kubernetes kubernetes kubernetes\n", 4), true},
		{"too long", strings.Repeat("line of text here\n", 200), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.content, DefaultMaxChars)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate(%s) err = %v, wantErr %v", tc.name, err, tc.wantErr)
			}
		})
	}
}
