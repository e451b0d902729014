package richtext

import "unicode/utf8"

// MarksAt returns the marks a collapsed cursor at p would type with: the
// marks of the run ending at p, or of the first run when p is at the start
// of its block.
func (d *Document) MarksAt(p Position) MarkSet {
	if p.Block < 0 || p.Block >= len(d.Blocks) {
		return MarkSet{}
	}
	b := d.Blocks[p.Block]
	if !b.IsText() || len(b.Inlines) == 0 {
		return MarkSet{}
	}
	if p.Offset <= 0 {
		return b.Inlines[0].Marks
	}
	pos := 0
	for _, in := range b.Inlines {
		pos += utf8.RuneCountInString(in.Text)
		if pos >= p.Offset {
			return in.Marks
		}
	}
	return b.Inlines[len(b.Inlines)-1].Marks
}

// IsMarkActive reports whether mark t is in effect for sel. A collapsed
// selection looks at the marks around the cursor; a range requires every
// selected character to carry the mark.
func (d *Document) IsMarkActive(sel Selection, t MarkType) bool {
	sel = d.Clamp(sel)
	if sel.Empty() {
		return d.MarksAt(sel.Head).Has(t)
	}
	seen := false
	active := true
	d.eachRun(sel.From(), sel.To(), func(in Inline) {
		seen = true
		if !in.Marks.Has(t) {
			active = false
		}
	})
	return seen && active
}

// LinkAt returns the href shared by every selected character, or "" when
// the selection is not uniformly linked to one target.
func (d *Document) LinkAt(sel Selection) string {
	sel = d.Clamp(sel)
	if sel.Empty() {
		return d.MarksAt(sel.Head).Href
	}
	href := ""
	first := true
	d.eachRun(sel.From(), sel.To(), func(in Inline) {
		if first {
			href = in.Marks.Href
			first = false
		} else if in.Marks.Href != href {
			href = ""
		}
	})
	return href
}

// IsBlockActive reports whether every block touched by sel has type t. For
// headings a non-zero level must match as well.
func (d *Document) IsBlockActive(sel Selection, t BlockType, level int) bool {
	if len(d.Blocks) == 0 {
		return false
	}
	sel = d.Clamp(sel)
	from, to := sel.From(), sel.To()
	for i := from.Block; i <= to.Block; i++ {
		b := d.Blocks[i]
		if b.Type != t {
			return false
		}
		if t == Heading && level != 0 && b.Level != level {
			return false
		}
	}
	return true
}

// eachRun calls fn with the non-empty part of every run between from and to.
func (d *Document) eachRun(from, to Position, fn func(Inline)) {
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		b := d.Blocks[i]
		if !b.IsText() {
			continue
		}
		start, end := blockRange(b, i, from, to)
		for _, in := range sliceRuns(b.Inlines, start, end) {
			if in.Text != "" {
				fn(in)
			}
		}
	}
}

// MarksAfter returns the marks of the character right after p.
func (d *Document) MarksAfter(p Position) MarkSet {
	if p.Block < 0 || p.Block >= len(d.Blocks) {
		return MarkSet{}
	}
	b := d.Blocks[p.Block]
	pos := 0
	for _, in := range b.Inlines {
		pos += utf8.RuneCountInString(in.Text)
		if pos > p.Offset {
			return in.Marks
		}
	}
	return MarkSet{}
}

// LinkRange returns the extent of the link around p: the longest stretch
// of consecutive runs sharing the href found at p.
func (d *Document) LinkRange(p Position) (Position, Position, bool) {
	href := d.MarksAt(p).Href
	if href == "" {
		href = d.MarksAfter(p).Href
	}
	if href == "" {
		return p, p, false
	}

	b := d.Blocks[p.Block]
	start, pos := -1, 0
	for _, in := range b.Inlines {
		n := utf8.RuneCountInString(in.Text)
		switch {
		case in.Marks.Href != href:
			if start >= 0 && pos >= p.Offset {
				return Position{p.Block, start}, Position{p.Block, pos}, true
			}
			start = -1
		case start < 0:
			start = pos
		}
		pos += n
	}
	if start >= 0 {
		return Position{p.Block, start}, Position{p.Block, pos}, true
	}
	return p, p, false
}
