package domain

import "github.com/shopspring/decimal"

// CartLine is flattened on the wire: {id, ...snapshot fields, quantity}.
type CartLine struct {
	EventSnapshot
	Quantity int `json:"quantity"`
}

func (l CartLine) ItemID() string {
	return l.ID
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order, at most one line per item id.
type Cart struct {
	Lines []CartLine
}

func NewCart() *Cart {
	return &Cart{Lines: []CartLine{}}
}

func (c *Cart) index(itemID string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Add increments the quantity of an existing line or appends a new one.
// The quantity sign is not validated.
func (c *Cart) Add(snapshot EventSnapshot, quantity int) {
	if i := c.index(snapshot.ID); i >= 0 {
		c.Lines[i].Quantity += quantity
		return
	}
	c.Lines = append(c.Lines, CartLine{EventSnapshot: snapshot, Quantity: quantity})
}

// Remove reports whether a line was deleted.
func (c *Cart) Remove(itemID string) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// SetQuantity sets an absolute quantity; quantity <= 0 removes the line.
func (c *Cart) SetQuantity(itemID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(itemID)
	}
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

func (c *Cart) Line(itemID string) (CartLine, bool) {
	if i := c.index(itemID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

func (c *Cart) Len() int {
	return len(c.Lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) Clone() *Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}
