package cartstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/eventhub/internal/domain"
)

var ErrMalformed = errors.New("malformed cart")

// Encode writes the cart as a JSON array of {id, ...snapshot, quantity}.
func Encode(cart *domain.Cart) ([]byte, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode rejects anything that is not a valid cart: lines without an id
// or duplicate lines. Quantities are kept as stored; Cart.Add does not
// check their sign, so a saved cart may hold zero or negative lines.
func Decode(data []byte) (*domain.Cart, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		if line.ID == "" {
			return nil, fmt.Errorf("%w: line %d has no id", ErrMalformed, i)
		}
		if _, dup := seen[line.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate line %s", ErrMalformed, line.ID)
		}
		seen[line.ID] = struct{}{}
	}

	cart := domain.NewCart()
	if lines != nil {
		cart.Lines = lines
	}
	return cart, nil
}
