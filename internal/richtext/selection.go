package richtext

// Position addresses a point inside a document: a block index and a rune
// offset within that block's text. Images have length zero, so the only
// position inside an image block is offset 0.
type Position struct {
	Block  int `json:"block"`
	Offset int `json:"offset"`
}

func (p Position) Before(q Position) bool {
	if p.Block != q.Block {
		return p.Block < q.Block
	}
	return p.Offset < q.Offset
}

// Selection is an anchor/head pair. Anchor may come after Head when the
// user selected backwards; use From and To for the ordered bounds.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

func Cursor(block, offset int) Selection {
	p := Position{Block: block, Offset: offset}
	return Selection{Anchor: p, Head: p}
}

func Span(from, to Position) Selection {
	return Selection{Anchor: from, Head: to}
}

func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

func (s Selection) From() Position {
	if s.Head.Before(s.Anchor) {
		return s.Head
	}
	return s.Anchor
}

func (s Selection) To() Position {
	if s.Head.Before(s.Anchor) {
		return s.Anchor
	}
	return s.Head
}

// Clamp moves both ends of s inside d.
func (d *Document) Clamp(s Selection) Selection {
	return Selection{Anchor: d.clampPos(s.Anchor), Head: d.clampPos(s.Head)}
}

func (d *Document) clampPos(p Position) Position {
	if len(d.Blocks) == 0 {
		return Position{}
	}
	if p.Block < 0 {
		return Position{}
	}
	if p.Block >= len(d.Blocks) {
		last := len(d.Blocks) - 1
		return Position{Block: last, Offset: d.Blocks[last].Len()}
	}
	n := d.Blocks[p.Block].Len()
	switch {
	case p.Offset < 0:
		p.Offset = 0
	case p.Offset > n:
		p.Offset = n
	}
	return p
}

// End is the position after the last character of the document.
func (d *Document) End() Position {
	if len(d.Blocks) == 0 {
		return Position{}
	}
	last := len(d.Blocks) - 1
	return Position{Block: last, Offset: d.Blocks[last].Len()}
}

// blockRange returns the rune range of block i covered by [from, to].
func blockRange(b Block, i int, from, to Position) (int, int) {
	start, end := 0, b.Len()
	if i == from.Block {
		start = from.Offset
	}
	if i == to.Block {
		end = to.Offset
	}
	return start, end
}
