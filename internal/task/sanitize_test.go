package task

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScriptFromTitle(t *testing.T) {
	got := Sanitize(Task{Title: "<script>x</script>Buy milk"})
	if got.Title != "Buy milk" {
		t.Fatalf("title = %q, want %q", got.Title, "Buy milk")
	}
}

func TestSanitizeTextRemovesAllMarkup(t *testing.T) {
	cases := map[string]string{
		"plain":                        "plain",
		"<b>bold</b>":                  "bold",
		"<img src=x onerror=alert(1)>": "",
		"<style>p{}</style>ok":         "ok",
	}
	for in, want := range cases {
		if got := SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeMarkupKeepsAllowlist(t *testing.T) {
	in := "<strong>do</strong> <script>evil()</script><ul><li>one</li></ul>"
	got := SanitizeMarkup(in)
	if !strings.Contains(got, "<strong>do</strong>") {
		t.Fatalf("allowlisted markup stripped: %q", got)
	}
	if !strings.Contains(got, "<li>one</li>") {
		t.Fatalf("list markup stripped: %q", got)
	}
	if strings.Contains(got, "script") || strings.Contains(got, "evil") {
		t.Fatalf("executable markup survived: %q", got)
	}
}

func TestSanitizeLengthCaps(t *testing.T) {
	got := Sanitize(Task{
		Title:       strings.Repeat("a", MaxTitleLength+50),
		Description: strings.Repeat("b", MaxDescriptionLength+50),
	})
	if len(got.Title) != MaxTitleLength {
		t.Fatalf("title length = %d, want %d", len(got.Title), MaxTitleLength)
	}
	if len(got.Description) != MaxDescriptionLength {
		t.Fatalf("description length = %d, want %d", len(got.Description), MaxDescriptionLength)
	}
}

func TestSanitizeNormalizesCollections(t *testing.T) {
	got := Sanitize(Task{
		Tags:     []string{"<i>home</i>", "<script>x</script>", "errand"},
		Priority: Priority("bogus"),
	})
	if got.Tags == nil || got.Subtasks == nil {
		t.Fatal("tags and subtasks must be non-nil after sanitize")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "home" || got.Tags[1] != "errand" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if got.Priority != PriorityMedium {
		t.Fatalf("priority = %q, want fallback medium", got.Priority)
	}
}

func TestSanitizeRecursesIntoSubtasks(t *testing.T) {
	got := Sanitize(Task{
		Title: "parent",
		Subtasks: []Task{
			{Title: "<script>x</script>child"},
		},
	})
	if got.Subtasks[0].Title != "child" {
		t.Fatalf("subtask title = %q, want child", got.Subtasks[0].Title)
	}
}
