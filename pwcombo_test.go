// Tests for package pwcombo.
package pwcombo

import (
	"context"
	"slices"
	"sort"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countLetters returns the number of runes unicode classifies as letters.
func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// isAnagram reports whether a and b contain the same multiset of runes.
func isAnagram(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	slices.Sort(ra)
	slices.Sort(rb)
	return slices.Equal(ra, rb)
}

// equalFold reports whether variant differs from password only in the case
// of letters at the same positions.
func equalFold(password, variant string) bool {
	pr, vr := []rune(password), []rune(variant)
	if len(pr) != len(vr) {
		return false
	}
	for i := range pr {
		if pr[i] == vr[i] {
			continue
		}
		if !unicode.IsLetter(pr[i]) {
			return false
		}
		if vr[i] != unicode.ToLower(pr[i]) && vr[i] != unicode.ToUpper(pr[i]) {
			return false
		}
	}
	return true
}

func TestExpand(t *testing.T) {
	combos := Expand("ab1")
	expected := []string{"ab1", "Ab1", "aB1", "AB1"}

	sort.Strings(combos)
	sort.Strings(expected)
	assert.Equal(t, expected, combos)
}

func TestExpandEmpty(t *testing.T) {
	assert.Equal(t, []string{""}, Expand(""))
}

func TestExpandSize(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"digits only", "1234"},
		{"letters only", "abcd"},
		{"mixed", "a1B2!"},
		{"repeated letters", "aaA"},
		{"unicode letters", "äöß"},
		{"caseless letters", "日本a"},
		{"symbols", "!@#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos := Expand(tt.password)
			assert.Len(t, combos, 1<<countLetters(tt.password))

			for _, c := range combos {
				assert.Equal(t, len([]rune(tt.password)), len([]rune(c)), "variant %q", c)
				assert.True(t, equalFold(tt.password, c), "variant %q of %q", c, tt.password)
			}
		})
	}
}

func TestExpandKeepsDuplicatesForCaselessLetters(t *testing.T) {
	combos := Expand("日")
	assert.Equal(t, []string{"日", "日"}, combos)
	assert.Len(t, Dedupe(combos), 1)
}

func TestPermute(t *testing.T) {
	perms := Permute([]string{"ab1", "Ab1"})
	expected := Set{}
	for _, s := range []string{
		"ab1", "a1b", "ba1", "b1a", "1ab", "1ba",
		"Ab1", "A1b", "bA1", "b1A", "1Ab", "1bA",
	} {
		expected.Add(s)
	}

	assert.Equal(t, expected, perms)
	assert.Equal(t, 12, perms.Len())
}

func TestPermuteBoundaries(t *testing.T) {
	assert.Empty(t, Permute(nil))
	assert.Empty(t, Permute([]string{}))

	perms := Permute([]string{""})
	assert.Equal(t, 1, perms.Len())
	assert.True(t, perms.Contains(""))
}

func TestPermuteRepeatedCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"single", "a", 1},
		{"all equal", "aaa", 1},
		{"two equal", "aab", 3},
		{"pairs", "aabb", 6},
		{"distinct", "abcd", 24},
		{"multibyte", "äöü", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms := Permute([]string{tt.input})
			assert.Equal(t, tt.want, perms.Len())
			for p := range perms {
				assert.True(t, isAnagram(tt.input, p), "%q is not an anagram of %q", p, tt.input)
			}
		})
	}
}

func TestPermuteDedupesAcrossCombinations(t *testing.T) {
	perms := Permute([]string{"ab", "ba", "ab"})
	assert.Equal(t, Set{"ab": {}, "ba": {}}, perms)
}

func TestPermuteRawAndDedupedVariantsAgree(t *testing.T) {
	for _, pw := range []string{"ab1", "aA", "日a", "xyZ!"} {
		raw := Expand(pw)
		assert.Equal(t, Permute(raw), Permute(Dedupe(raw)), "password %q", pw)
	}
}

func TestGenerate(t *testing.T) {
	set, err := Generate(context.Background(), "ab1")
	require.NoError(t, err)
	assert.Equal(t, 24, set.Len())
	assert.Equal(t, Permute(Expand("ab1")), set)
}

func TestGenerateIdempotent(t *testing.T) {
	first, err := Generate(context.Background(), "aB3c")
	require.NoError(t, err)
	second, err := Generate(context.Background(), "aB3c")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateEmptyPassword(t *testing.T) {
	set, err := Generate(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyPassword)
	assert.Nil(t, set)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := Generate(ctx, "abc")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
}

func TestSetSorted(t *testing.T) {
	s := Set{}
	for _, item := range []string{"ab1", "Ab1", "1ba", "é", "z"} {
		s.Add(item)
	}
	assert.Equal(t, []string{"1ba", "Ab1", "ab1", "z", "é"}, s.Sorted())
}

func TestNextPermutation(t *testing.T) {
	runes := []rune("abc")
	var got []string
	for {
		got = append(got, string(runes))
		if !nextPermutation(runes) {
			break
		}
	}
	assert.Equal(t, []string{"abc", "acb", "bac", "bca", "cab", "cba"}, got)
}

func TestPermuteContext(t *testing.T) {
	set, err := PermuteContext(context.Background(), []string{"ab1", "Ab1"})
	require.NoError(t, err)
	assert.Equal(t, Permute([]string{"ab1", "Ab1"}), set)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set, err = PermuteContext(ctx, []string{"ab1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)

	set, err = PermuteContext(ctx, nil)
	require.NoError(t, err, "nothing to cancel")
	assert.Empty(t, set)
}

func TestPermuteContextCancelledMidVariant(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	// 11! orderings take far longer than the cancellation delay.
	start := time.Now()
	set, err := PermuteContext(ctx, []string{"0123456789a"})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestGenerateCancelledDuringExpansion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	// 2^20 variants of 20 letters, each with 20! orderings.
	set, err := Generate(ctx, "abcdefghijklmnopqrst")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
}

func TestExpandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	variants, err := expand(ctx, "ab1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, variants)
}
