package diff

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind is the type of a diff operation.
type Kind int

const (
	Equal Kind = iota
	Insert
	Delete
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Operation is one step of an edit script.
type Operation struct {
	Kind Kind
	Text string
}

// Strategy selects the granularity of a diff.
type Strategy string

const (
	// Char diffs individual characters.
	Char Strategy = "char"
	// Word diffs words and whitespace runs as whole tokens.
	Word Strategy = "word"
	// Position compares characters at equal indices without alignment.
	Position Strategy = "position"
)

// DefaultStrategy is used for whole-paragraph replacement when the caller
// does not choose one.
const DefaultStrategy = Word

// ParseStrategy parses a strategy name. The empty string yields
// DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultStrategy, nil
	case Char:
		return Char, nil
	case Word:
		return Word, nil
	case Position:
		return Position, nil
	default:
		return "", fmt.Errorf("unknown diff strategy %q (want char, word or position)", s)
	}
}

// Compute runs the given strategy.
func Compute(strategy Strategy, a, b string) ([]Operation, error) {
	switch strategy {
	case Char:
		return Chars(a, b), nil
	case Word, "":
		return Words(a, b), nil
	case Position:
		return Positions(a, b), nil
	default:
		return nil, fmt.Errorf("unknown diff strategy %q", string(strategy))
	}
}

// Chars computes a character-level diff using the longest common
// subsequence of the two strings' runes.
func Chars(a, b string) []Operation {
	return lcs(splitChars(a), splitChars(b))
}

// Words computes a word-level diff. Words and runs of whitespace are
// separate tokens, so whitespace is compared atomically.
//
// Change blocks separated only by whitespace are joined, and every change
// block is reported as one deletion followed by one insertion.
func Words(a, b string) []Operation {
	return regroup(lcs(tokenize(a), tokenize(b)))
}

// Positions compares the strings index by index. A mismatch at an index is
// reported as a deletion of the old character and an insertion of the new
// one; the longer string's tail is a trailing deletion or insertion.
func Positions(a, b string) []Operation {
	ra, rb := []rune(a), []rune(b)
	var ops []Operation
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] == rb[i] {
			ops = append(ops, Operation{Kind: Equal, Text: string(ra[i])})
			continue
		}
		ops = append(ops,
			Operation{Kind: Delete, Text: string(ra[i])},
			Operation{Kind: Insert, Text: string(rb[i])},
		)
	}
	if len(ra) > n {
		ops = append(ops, Operation{Kind: Delete, Text: string(ra[n:])})
	}
	if len(rb) > n {
		ops = append(ops, Operation{Kind: Insert, Text: string(rb[n:])})
	}
	return merge(ops)
}

// Source rebuilds the old string from an edit script.
func Source(ops []Operation) string {
	var sb strings.Builder
	for _, op := range ops {
		if op.Kind != Insert {
			sb.WriteString(op.Text)
		}
	}
	return sb.String()
}

// Target rebuilds the new string from an edit script.
func Target(ops []Operation) string {
	var sb strings.Builder
	for _, op := range ops {
		if op.Kind != Delete {
			sb.WriteString(op.Text)
		}
	}
	return sb.String()
}

// lcs diffs two token sequences. On ties the backtrack prefers an insertion
// over a deletion.
func lcs(a, b []string) []Operation {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	// backtrack collects operations in reverse
	rev := make([]Operation, 0, m+n)
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			rev = append(rev, Operation{Kind: Equal, Text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			rev = append(rev, Operation{Kind: Insert, Text: b[j-1]})
			j--
		default:
			rev = append(rev, Operation{Kind: Delete, Text: a[i-1]})
			i--
		}
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return merge(rev)
}

// merge joins adjacent operations of the same kind and drops empty ones.
func merge(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if op.Text == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1].Kind == op.Kind {
			out[len(out)-1].Text += op.Text
			continue
		}
		out = append(out, op)
	}
	return out
}

// regroup rewrites each run of changes as a single delete+insert pair,
// pulling in whitespace-only equalities that sit between two changes.
func regroup(ops []Operation) []Operation {
	var out []Operation
	var del, ins strings.Builder
	inBlock := false

	flush := func() {
		if del.Len() > 0 {
			out = append(out, Operation{Kind: Delete, Text: del.String()})
		}
		if ins.Len() > 0 {
			out = append(out, Operation{Kind: Insert, Text: ins.String()})
		}
		del.Reset()
		ins.Reset()
		inBlock = false
	}

	for i, op := range ops {
		switch op.Kind {
		case Delete:
			del.WriteString(op.Text)
			inBlock = true
		case Insert:
			ins.WriteString(op.Text)
			inBlock = true
		case Equal:
			if inBlock && isSpace(op.Text) && i+1 < len(ops) && ops[i+1].Kind != Equal {
				del.WriteString(op.Text)
				ins.WriteString(op.Text)
				continue
			}
			flush()
			out = append(out, op)
		}
	}
	flush()
	return merge(out)
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// tokenize splits s into alternating word and whitespace tokens.
func tokenize(s string) []string {
	var tokens []string
	start := 0
	prevSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > 0 && space != prevSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isSpace(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
