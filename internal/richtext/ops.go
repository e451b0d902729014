package richtext

import "unicode/utf8"

// splitRuns cuts a run sequence at rune offset off. Both halves are fresh
// slices.
func splitRuns(in []Inline, off int) (left, right []Inline) {
	pos := 0
	for i, r := range in {
		n := utf8.RuneCountInString(r.Text)
		if off <= pos {
			right = append(right, in[i:]...)
			return left, right
		}
		if off < pos+n {
			cut := byteIndex(r.Text, off-pos)
			left = append(left, Inline{Text: r.Text[:cut], Marks: r.Marks})
			right = append(right, Inline{Text: r.Text[cut:], Marks: r.Marks})
			right = append(right, in[i+1:]...)
			return left, right
		}
		left = append(left, r)
		pos += n
	}
	return left, right
}

func byteIndex(s string, runes int) int {
	i := 0
	for k := 0; k < runes && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

func sliceRuns(in []Inline, start, end int) []Inline {
	if end <= start {
		return nil
	}
	_, rest := splitRuns(in, start)
	mid, _ := splitRuns(rest, end-start)
	return mid
}

func mapRuns(in []Inline, start, end int, fn func(MarkSet) MarkSet) []Inline {
	left, rest := splitRuns(in, start)
	mid, right := splitRuns(rest, end-start)
	for i := range mid {
		mid[i].Marks = fn(mid[i].Marks)
	}
	out := append(left, mid...)
	return mergeRuns(append(out, right...))
}

func runsEqual(a, b []Inline) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ApplyMarks rewrites the marks of every character between from and to and
// reports whether anything changed.
func (d *Document) ApplyMarks(from, to Position, fn func(MarkSet) MarkSet) bool {
	changed := false
	for i := from.Block; i <= to.Block && i < len(d.Blocks); i++ {
		b := d.Blocks[i]
		if !b.IsText() {
			continue
		}
		start, end := blockRange(b, i, from, to)
		if end <= start {
			continue
		}
		before := mergeRuns(b.Inlines)
		after := mapRuns(b.Inlines, start, end, fn)
		if !runsEqual(before, after) {
			changed = true
		}
		d.Blocks[i].Inlines = after
	}
	return changed
}

// InsertText inserts text with the given marks at p, which must be inside a
// text block, and returns the position after the inserted text.
func (d *Document) InsertText(p Position, text string, marks MarkSet) Position {
	text = cleanText(text)
	b := d.Blocks[p.Block]
	left, right := splitRuns(b.Inlines, p.Offset)
	runs := append(left, Inline{Text: text, Marks: marks})
	d.Blocks[p.Block].Inlines = mergeRuns(append(runs, right...))
	return Position{Block: p.Block, Offset: p.Offset + utf8.RuneCountInString(text)}
}

// DeleteRange removes everything between from and to. When the range spans
// blocks, the head of the first text block and the tail of the last one are
// joined into the first. The document always keeps at least one block.
func (d *Document) DeleteRange(from, to Position) Position {
	if !from.Before(to) {
		return from
	}
	first, last := d.Blocks[from.Block], d.Blocks[to.Block]
	if from.Block == to.Block {
		if first.IsText() {
			left, _ := splitRuns(first.Inlines, from.Offset)
			_, right := splitRuns(first.Inlines, to.Offset)
			d.Blocks[from.Block].Inlines = mergeRuns(append(left, right...))
		}
		return from
	}

	var merged []Block
	cursor := Position{Block: from.Block}
	switch {
	case first.IsText() && last.IsText():
		head, _ := splitRuns(first.Inlines, from.Offset)
		_, tail := splitRuns(last.Inlines, to.Offset)
		first.Inlines = mergeRuns(append(head, tail...))
		merged = []Block{first}
		cursor.Offset = from.Offset
	case first.IsText():
		head, _ := splitRuns(first.Inlines, from.Offset)
		first.Inlines = mergeRuns(head)
		merged = []Block{first}
		cursor.Offset = from.Offset
	case last.IsText():
		_, tail := splitRuns(last.Inlines, to.Offset)
		last.Inlines = mergeRuns(tail)
		merged = []Block{last}
	}

	blocks := append([]Block{}, d.Blocks[:from.Block]...)
	blocks = append(blocks, merged...)
	d.Blocks = append(blocks, d.Blocks[to.Block+1:]...)
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{Type: Paragraph}}
	}
	return d.clampPos(cursor)
}

// SplitBlock cuts the text block at p in two. Both halves keep the block's
// type; the returned position is the start of the second half.
func (d *Document) SplitBlock(p Position) Position {
	b := d.Blocks[p.Block]
	left, right := splitRuns(b.Inlines, p.Offset)
	head, tail := b, b
	head.Inlines = mergeRuns(left)
	tail.Inlines = mergeRuns(right)
	d.Blocks[p.Block] = head
	d.InsertBlock(p.Block+1, tail)
	return Position{Block: p.Block + 1}
}

func (d *Document) InsertBlock(index int, b Block) {
	d.Blocks = append(d.Blocks, Block{})
	copy(d.Blocks[index+1:], d.Blocks[index:])
	d.Blocks[index] = b
}

// RemoveBlock deletes block i, leaving an empty paragraph when it was the
// only block.
func (d *Document) RemoveBlock(i int) {
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{Type: Paragraph}}
	}
}

// JoinWithPrevious appends the text of block i to block i-1 and removes
// block i. Both must be text blocks; the result keeps the type of i-1.
func (d *Document) JoinWithPrevious(i int) Position {
	prev := d.Blocks[i-1]
	at := Position{Block: i - 1, Offset: prev.Len()}
	runs := append(append([]Inline{}, prev.Inlines...), d.Blocks[i].Inlines...)
	d.Blocks[i-1].Inlines = mergeRuns(runs)
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	return at
}

// SetBlockType retags every text block with index in [from, to] and reports
// whether any block changed. Images are left alone.
func (d *Document) SetBlockType(from, to int, t BlockType, level int) bool {
	if t == Image {
		return false
	}
	if t != Heading {
		level = 0
	} else if level != 2 {
		level = 1
	}
	changed := false
	for i := from; i <= to && i < len(d.Blocks); i++ {
		b := &d.Blocks[i]
		if !b.IsText() {
			continue
		}
		if b.Type != t || b.Level != level {
			b.Type, b.Level = t, level
			changed = true
		}
	}
	return changed
}
