package catalog

// Catalog is the ordered, read-only list of assessments shared by every
// request. Positions are stable for the lifetime of the value.
type Catalog struct {
	items []Assessment
}

// New creates a catalog from items. The slice is copied so later changes by
// the caller are not visible.
func New(items []Assessment) *Catalog {
	cp := make([]Assessment, len(items))
	copy(cp, items)
	return &Catalog{items: cp}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the record at position i.
func (c *Catalog) At(i int) Assessment {
	return c.items[i]
}

// All returns a copy of the records in catalog order.
func (c *Catalog) All() []Assessment {
	if c == nil {
		return nil
	}
	cp := make([]Assessment, len(c.items))
	copy(cp, c.items)
	return cp
}
