package reading

import (
	"fmt"
	"strings"

	apperrors "github.com/yanqian/ai-tarot/pkg/errors"
)

// Toggle adds card to selected, or removes it when a card with the same id is
// already present. A fourth distinct card is rejected with max_cards_reached and
// the selection is returned unchanged. The input slice is never modified.
func Toggle(selected []Card, card Card) ([]Card, error) {
	for i, existing := range selected {
		if existing.ID != card.ID {
			continue
		}
		if len(selected) == 1 {
			return nil, nil
		}
		next := make([]Card, 0, len(selected)-1)
		next = append(next, selected[:i]...)
		return append(next, selected[i+1:]...), nil
	}
	if len(selected) >= MaxSelected {
		return cloneCards(selected), apperrors.Wrap(apperrors.CodeMaxCards, "three cards are already selected, remove one to pick another", nil)
	}
	next := make([]Card, 0, len(selected)+1)
	next = append(next, selected...)
	return append(next, card), nil
}

// GeneratedID derives a stable id from a card name.
func GeneratedID(name string) CardID {
	return CardID("generated-" + strings.ToLower(strings.Join(strings.Fields(name), "-")))
}

// EnsureCardIDs returns a copy of cards where every card has an id.
func EnsureCardIDs(cards []Card) []Card {
	out := listOf(cards)
	for i := range out {
		if out[i].ID != "" {
			continue
		}
		if strings.TrimSpace(out[i].Name) != "" {
			out[i].ID = GeneratedID(out[i].Name)
			continue
		}
		out[i].ID = CardID(fmt.Sprintf("card-%d", i))
	}
	return out
}

// FilterCards keeps cards whose name contains query, ignoring case.
func FilterCards(cards []Card, query string) []Card {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return listOf(cards)
	}
	out := make([]Card, 0, len(cards))
	for _, card := range cards {
		if strings.Contains(strings.ToLower(card.Name), needle) {
			out = append(out, card)
		}
	}
	return out
}

func findCard(cards []Card, id CardID) (Card, bool) {
	for _, card := range cards {
		if card.ID == id {
			return card, true
		}
	}
	return Card{}, false
}

func hasDuplicateIDs(cards []Card) bool {
	seen := make(map[CardID]struct{}, len(cards))
	for _, card := range cards {
		if _, ok := seen[card.ID]; ok {
			return true
		}
		seen[card.ID] = struct{}{}
	}
	return false
}

func cardNames(cards []Card) []string {
	names := make([]string, 0, len(cards))
	for _, card := range cards {
		names = append(names, card.Name)
	}
	return names
}

func selectionOf(cards []Card) Selection {
	return Selection{Cards: listOf(cards), Ready: len(cards) == MaxSelected}
}

// cloneCards keeps nil for an empty selection.
func cloneCards(cards []Card) []Card {
	if len(cards) == 0 {
		return nil
	}
	return append([]Card(nil), cards...)
}

// listOf always returns a non-nil copy so views get [] instead of null.
func listOf(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
