package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsMatcher_FirstMatchWins(t *testing.T) {
	candidates := []Candidate{
		{Label: "Acme", ID: 7},
		{Label: "Corp", ID: 3},
	}

	id, ok := ContainsMatcher{}.Match("Acme Corp - Branch 2", candidates)
	require.True(t, ok)
	require.Equal(t, int64(7), id)
}

func TestContainsMatcher_CaseInsensitiveSubstring(t *testing.T) {
	candidates := []Candidate{{Label: "marketing", ID: 12}}

	id, ok := ContainsMatcher{}.Match("Departamento de MARKETING digital", candidates)
	require.True(t, ok)
	require.Equal(t, int64(12), id)
}

func TestContainsMatcher_NoMatchIsNotAnError(t *testing.T) {
	candidates := []Candidate{{Label: "Ventas", ID: 1}}

	id, ok := ContainsMatcher{}.Match("Recursos Humanos", candidates)
	require.False(t, ok)
	require.Zero(t, id)
}

func TestContainsMatcher_EmptyCandidateLabelNeverMatches(t *testing.T) {
	candidates := []Candidate{
		{Label: "", ID: 9},
		{Label: "Ventas", ID: 1},
	}

	id, ok := ContainsMatcher{}.Match("Equipo de Ventas", candidates)
	require.True(t, ok)
	require.Equal(t, int64(1), id)
}

func TestContainsMatcher_OrderIsPriority(t *testing.T) {
	forward := []Candidate{{Label: "a", ID: 1}, {Label: "ab", ID: 2}}
	reversed := []Candidate{{Label: "ab", ID: 2}, {Label: "a", ID: 1}}

	id, ok := ContainsMatcher{}.Match("abc", forward)
	require.True(t, ok)
	require.Equal(t, int64(1), id)

	id, ok = ContainsMatcher{}.Match("abc", reversed)
	require.True(t, ok)
	require.Equal(t, int64(2), id)
}

func TestExactMatcher(t *testing.T) {
	candidates := []Candidate{{Label: "Ventas", ID: 4}}

	id, ok := ExactMatcher{}.Match("ventas", candidates)
	require.True(t, ok)
	require.Equal(t, int64(4), id)

	_, ok = ExactMatcher{}.Match("Equipo de Ventas", candidates)
	require.False(t, ok)
}

func TestFuzzyMatcher_NormalizesDiacritics(t *testing.T) {
	candidates := []Candidate{{Label: "Administración", ID: 5}}

	id, ok := FuzzyMatcher{}.Match("Equipo de Administracion Central", candidates)
	require.True(t, ok)
	require.Equal(t, int64(5), id)
}
