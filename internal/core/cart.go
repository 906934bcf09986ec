package core

import "github.com/shopspring/decimal"

// AddItem adds qty units of product. If the product is already in the cart its
// quantity is incremented instead of adding a second line. The new or updated
// line becomes the selected line. A non-positive qty is read as the default of 1.
func (c *Cart) AddItem(p Product, qty decimal.Decimal) LineID {
	if !qty.IsPositive() {
		qty = one
	}
	for i := range c.items {
		if c.items[i].ProductRef == p.Ref {
			c.items[i].Quantity = c.items[i].Quantity.Add(qty)
			c.selectLine(c.items[i].ID)
			return c.items[i].ID
		}
	}
	if c.nextID == 0 {
		c.nextID = 1
	}
	id := c.nextID
	c.nextID++
	c.items = append(c.items, LineItem{
		ID:              id,
		ProductRef:      p.Ref,
		Name:            p.Name,
		UnitPrice:       p.UnitPrice,
		Quantity:        qty,
		LineDiscountPct: decimal.Zero,
	})
	c.selectLine(id)
	return id
}

// SetLineQuantity replaces the quantity of a line. Callers wanting to drop a
// line use RemoveItem; a zero or negative quantity is rejected.
func (c *Cart) SetLineQuantity(id LineID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	i := c.indexOf(id)
	if i < 0 {
		return ErrLineNotFound
	}
	c.items[i].Quantity = qty
	return nil
}

// SetLineDiscount sets the line discount, saturating it to [0, 100].
func (c *Cart) SetLineDiscount(id LineID, pct decimal.Decimal) error {
	i := c.indexOf(id)
	if i < 0 {
		return ErrLineNotFound
	}
	c.items[i].LineDiscountPct = ClampPercent(pct)
	return nil
}

// RemoveItem removes a line. Removing the selected line clears the selection.
func (c *Cart) RemoveItem(id LineID) error {
	i := c.indexOf(id)
	if i < 0 {
		return ErrLineNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	if c.selected != nil && *c.selected == id {
		c.selected = nil
	}
	return nil
}

// Select marks a line as the target of numeric entry.
func (c *Cart) Select(id LineID) error {
	if c.indexOf(id) < 0 {
		return ErrLineNotFound
	}
	c.selectLine(id)
	return nil
}

// SetGlobalDiscount sets the cart-wide discount, saturating it to [0, 100].
func (c *Cart) SetGlobalDiscount(pct decimal.Decimal) {
	c.globalDiscountPct = ClampPercent(pct)
}

// Clear empties the cart and resets the selection and the global discount.
func (c *Cart) Clear() {
	c.items = nil
	c.selected = nil
	c.globalDiscountPct = decimal.Zero
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Line returns a copy of one line.
func (c *Cart) Line(id LineID) (LineItem, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return LineItem{}, false
	}
	return c.items[i], true
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.items) }

// GlobalDiscountPct returns the cart-wide discount percentage.
func (c *Cart) GlobalDiscountPct() decimal.Decimal { return c.globalDiscountPct }

// Selected returns the selected line, if any.
func (c *Cart) Selected() (LineID, bool) {
	if c.selected == nil {
		return 0, false
	}
	return *c.selected, true
}

func (c *Cart) selectLine(id LineID) {
	sel := id
	c.selected = &sel
}

func (c *Cart) indexOf(id LineID) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
