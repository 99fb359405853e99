package reading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

func card(id, name string) Card {
	return Card{ID: CardID(id), Name: name}
}

func TestToggle_AddRemoveAndLimit(t *testing.T) {
	var selected []Card
	var err error
	for _, c := range []Card{card("1", "The Fool"), card("2", "The Magician"), card("3", "The Empress")} {
		selected, err = Toggle(selected, c)
		require.NoError(t, err)
	}
	require.Len(t, selected, 3)

	next, err := Toggle(selected, card("4", "The Tower"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeMaxCards))
	require.Equal(t, selected, next)

	next, err = Toggle(selected, card("2", "The Magician"))
	require.NoError(t, err)
	require.Equal(t, []Card{card("1", "The Fool"), card("3", "The Empress")}, next)
	require.Len(t, selected, 3, "input must not be modified")
}

func TestToggle_TwiceRestoresSelection(t *testing.T) {
	cases := [][]Card{
		nil,
		{card("1", "The Fool")},
		{card("1", "The Fool"), card("2", "The Magician")},
	}
	for _, start := range cases {
		added, err := Toggle(start, card("9", "The Moon"))
		require.NoError(t, err)
		restored, err := Toggle(added, card("9", "The Moon"))
		require.NoError(t, err)
		require.Equal(t, start, restored)
	}
}

func TestEnsureCardIDs(t *testing.T) {
	in := []Card{
		{Name: "Wheel of  Fortune"},
		{ID: "12", Name: "The Hanged Man"},
		{},
	}
	out := EnsureCardIDs(in)
	require.Equal(t, CardID("generated-wheel-of-fortune"), out[0].ID)
	require.Equal(t, CardID("12"), out[1].ID)
	require.Equal(t, CardID("card-2"), out[2].ID)
	require.Empty(t, in[0].ID)
	require.Equal(t, GeneratedID("Wheel of Fortune"), EnsureCardIDs(in)[0].ID)
}

func TestFilterCards(t *testing.T) {
	cards := []Card{card("1", "The Star"), card("2", "Star of Cups"), card("3", "The Sun")}
	require.Len(t, FilterCards(cards, "star"), 2)
	require.Len(t, FilterCards(cards, "  "), 3)
	require.NotNil(t, FilterCards(cards, "nothing"))
	require.Empty(t, FilterCards(cards, "nothing"))
}

func TestCardID_UnmarshalAcceptsNumbers(t *testing.T) {
	var cards []Card
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"name":"The Chariot"},{"id":"x1","name":"Ace of Swords"},{"id":null,"name":"Death"}]`), &cards))
	require.Equal(t, CardID("7"), cards[0].ID)
	require.Equal(t, CardID("x1"), cards[1].ID)
	require.Empty(t, cards[2].ID)
}
