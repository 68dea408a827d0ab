package naming

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

func TestBucketOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want Bucket
	}{
		{"Foo!", "F"},
		{"foo", "F"},
		{"zork", "Z"},
		{"1942", BucketDigits},
		{"9 Lives", BucketDigits},
		{UnknownIdentifier, BucketOther},
		{EmptyIdentifier, BucketOther},
		{"!Exclaim", BucketOther},
		{"日本", BucketOther},
		{"", BucketOther},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			if got := BucketOf(tt.id); got != tt.want {
				t.Errorf("BucketOf(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestBucketOfTitleFoldsFirst(t *testing.T) {
	t.Parallel()

	if got := BucketOfTitle("Ünder"); got != "U" {
		t.Errorf("expected bucket U, got %q", got)
	}
	if got := BucketOfTitle(""); got != BucketOther {
		t.Errorf("expected bucket _, got %q", got)
	}
}

func TestParseLetter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Bucket
		wantErr bool
	}{
		{input: "a", want: "A"},
		{input: "Q", want: "Q"},
		{input: " b ", want: "B"},
		{input: "0", want: BucketDigits},
		{input: "7", want: BucketDigits},
		{input: "0-9", want: BucketDigits},
		{input: "_", want: BucketOther},
		{input: "#", want: BucketOther},
		{input: "é", want: "E"},
		{input: "", wantErr: true},
		{input: "AB", wantErr: true},
		{input: "letters", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLetter(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLetter) {
					t.Errorf("expected ErrInvalidLetter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLetter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestFilterAndDestinationAgree checks that the bucket used to filter by
// letter is the directory the artifact ends up in.
func TestFilterAndDestinationAgree(t *testing.T) {
	t.Parallel()

	titles := []string{"Foo!", "éclair", "1942", "", "???", "../x", "zelda"}
	for _, title := range titles {
		dest := DestinationFor("out", Sanitize(title))
		if string(BucketOfTitle(title)) != dest.Bucket {
			t.Errorf("title %q: filter bucket %q, destination bucket %q", title, BucketOfTitle(title), dest.Bucket)
		}
	}
}

func TestDestinationFor(t *testing.T) {
	t.Parallel()

	got := DestinationFor("out/", "Foo!")
	want := model.Destination{Root: "out", Bucket: "F", Identifier: "Foo!"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("destination mismatch (-want +got):\n%s", diff)
	}
	if got.Path() != filepath.Join("out", "F", "Foo!.md") {
		t.Errorf("unexpected path %q", got.Path())
	}

	traversal := DestinationFor("out", Sanitize("../../etc/passwd"))
	rel, err := filepath.Rel("out", traversal.Path())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(filepath.Dir(rel)) != "." {
		t.Errorf("expected artifact exactly two levels under root, got %q", rel)
	}
}
