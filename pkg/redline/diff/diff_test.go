package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []Operation
	}{
		{
			name: "phrase replacement is one pair",
			a:    "The quick fox jumps.",
			b:    "The lazy dog jumps.",
			want: []Operation{
				{Equal, "The "},
				{Delete, "quick fox"},
				{Insert, "lazy dog"},
				{Equal, " jumps."},
			},
		},
		{
			name: "pure insertion",
			a:    "Hello world",
			b:    "Hello brave new world",
			want: []Operation{
				{Equal, "Hello"},
				{Insert, " brave new"},
				{Equal, " world"},
			},
		},
		{
			name: "single word",
			a:    "a b c",
			b:    "a x c",
			want: []Operation{
				{Equal, "a "},
				{Delete, "b"},
				{Insert, "x"},
				{Equal, " c"},
			},
		},
		{
			name: "words are atomic",
			a:    "abc",
			b:    "abxc",
			want: []Operation{
				{Delete, "abc"},
				{Insert, "abxc"},
			},
		},
		{
			name: "identical",
			a:    "same text",
			b:    "same text",
			want: []Operation{{Equal, "same text"}},
		},
		{
			name: "from empty",
			a:    "",
			b:    "new",
			want: []Operation{{Insert, "new"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.a, tt.b)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Words() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChars(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []Operation
	}{
		{
			name: "insert in middle",
			a:    "abc",
			b:    "abxc",
			want: []Operation{{Equal, "ab"}, {Insert, "x"}, {Equal, "c"}},
		},
		{
			name: "substitution",
			a:    "a",
			b:    "b",
			want: []Operation{{Delete, "a"}, {Insert, "b"}},
		},
		{
			name: "kitten",
			a:    "kitten",
			b:    "sitting",
			want: []Operation{
				{Delete, "k"}, {Insert, "s"}, {Equal, "itt"},
				{Delete, "e"}, {Insert, "i"}, {Equal, "n"}, {Insert, "g"},
			},
		},
		{
			name: "multibyte",
			a:    "café",
			b:    "cafe",
			want: []Operation{{Equal, "caf"}, {Delete, "é"}, {Insert, "e"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Chars(tt.a, tt.b)); diff != "" {
				t.Errorf("Chars() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want []Operation
	}{
		{
			name: "same length",
			a:    "cat",
			b:    "cut",
			want: []Operation{{Equal, "c"}, {Delete, "a"}, {Insert, "u"}, {Equal, "t"}},
		},
		{
			name: "trailing insert",
			a:    "ab",
			b:    "abcd",
			want: []Operation{{Equal, "ab"}, {Insert, "cd"}},
		},
		{
			name: "trailing delete",
			a:    "abcd",
			b:    "ab",
			want: []Operation{{Equal, "ab"}, {Delete, "cd"}},
		},
		{
			name: "shifted text is noisy",
			a:    "ab",
			b:    "xab",
			want: []Operation{
				{Delete, "a"}, {Insert, "x"},
				{Delete, "b"}, {Insert, "ab"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Positions(tt.a, tt.b)); diff != "" {
				t.Errorf("Positions() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconstruction(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"The quick fox jumps.", "The lazy dog jumps."},
		{"  leading and trailing  ", "leading\tand trailing"},
		{"one two three four", "zero one three five"},
		{"naïve café", "naive cafe au lait"},
		{"line one\nline two", "line one\n\nline 2"},
		{"aaaa", "aa"},
		{"a b a b", "b a b a"},
	}

	strategies := []Strategy{Char, Word, Position}
	for _, s := range strategies {
		for _, p := range pairs {
			ops, err := Compute(s, p.a, p.b)
			require.NoError(t, err)
			assert.Equal(t, p.a, Source(ops), "%s source of %q -> %q", s, p.a, p.b)
			assert.Equal(t, p.b, Target(ops), "%s target of %q -> %q", s, p.a, p.b)
			for i := range ops {
				assert.NotEmpty(t, ops[i].Text, "%s produced an empty operation", s)
				if i > 0 {
					assert.NotEqual(t, ops[i-1].Kind, ops[i].Kind, "%s produced unmerged operations", s)
				}
			}
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "", want: Word},
		{in: "char", want: Char},
		{in: " Word ", want: Word},
		{in: "POSITION", want: Position},
		{in: "myers", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Compute(Strategy("bogus"), "a", "b")
	assert.Error(t, err)
}
