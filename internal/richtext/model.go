// Package richtext holds the structured document model behind every rich-text
// field of the site (article, page and content block bodies) and its mapping
// to and from the persisted HTML form.
//
// A Document is a flat sequence of blocks. List items and quoted paragraphs
// are blocks of their own; adjacent blocks of the same list or quote type
// belong to the same <ul>, <ol> or <blockquote> element when serialized.
package richtext

import (
	"strings"
	"unicode/utf8"
)

type BlockType int

const (
	Paragraph BlockType = iota
	Heading
	BulletList
	OrderedList
	Image
	Blockquote
)

func (t BlockType) String() string {
	switch t {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case BulletList:
		return "bulletList"
	case OrderedList:
		return "orderedList"
	case Image:
		return "image"
	case Blockquote:
		return "blockquote"
	default:
		return "unknown"
	}
}

// ParseBlockType accepts the names produced by String.
func ParseBlockType(name string) (BlockType, bool) {
	for _, t := range []BlockType{Paragraph, Heading, BulletList, OrderedList, Image, Blockquote} {
		if t.String() == name {
			return t, true
		}
	}
	return Paragraph, false
}

type MarkType int

const (
	Bold MarkType = iota
	Italic
	Underline
	Link
)

func (m MarkType) String() string {
	switch m {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	case Link:
		return "link"
	default:
		return "unknown"
	}
}

// ParseMarkType accepts the names produced by String.
func ParseMarkType(name string) (MarkType, bool) {
	for _, m := range []MarkType{Bold, Italic, Underline, Link} {
		if m.String() == name {
			return m, true
		}
	}
	return Bold, false
}

// MarkSet is the set of marks carried by a run. It is comparable, so two
// runs have the same marks exactly when their sets are ==.
// A non-empty Href means the Link mark is present.
type MarkSet struct {
	Bold      bool
	Italic    bool
	Underline bool
	Href      string
}

func (m MarkSet) Has(t MarkType) bool {
	switch t {
	case Bold:
		return m.Bold
	case Italic:
		return m.Italic
	case Underline:
		return m.Underline
	case Link:
		return m.Href != ""
	default:
		return false
	}
}

// With returns a copy with mark t switched on or off. Switching Link on
// requires a href and is done through WithLink.
func (m MarkSet) With(t MarkType, on bool) MarkSet {
	switch t {
	case Bold:
		m.Bold = on
	case Italic:
		m.Italic = on
	case Underline:
		m.Underline = on
	case Link:
		if !on {
			m.Href = ""
		}
	}
	return m
}

func (m MarkSet) WithLink(href string) MarkSet {
	m.Href = cleanText(strings.TrimSpace(href))
	return m
}

func (m MarkSet) IsZero() bool {
	return m == MarkSet{}
}

// Inline is a text run with a uniform mark set.
type Inline struct {
	Text  string
	Marks MarkSet
}

// Block is one structural unit. Level is used by headings only; Src and
// Alt by images only; images carry no inlines.
type Block struct {
	Type    BlockType
	Level   int
	Inlines []Inline
	Src     string
	Alt     string
}

func (b Block) IsText() bool {
	return b.Type != Image
}

// Text returns the plain text of the block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, in := range b.Inlines {
		sb.WriteString(in.Text)
	}
	return sb.String()
}

// Len is the length of the block in runes; positions inside a block are
// rune offsets in [0, Len].
func (b Block) Len() int {
	n := 0
	for _, in := range b.Inlines {
		n += utf8.RuneCountInString(in.Text)
	}
	return n
}

func (b Block) clone() Block {
	c := b
	if b.Inlines != nil {
		c.Inlines = make([]Inline, len(b.Inlines))
		copy(c.Inlines, b.Inlines)
	}
	return c
}

type Document struct {
	Blocks []Block
}

// NewEmpty returns the document used when no persisted content exists: a
// single empty paragraph.
func NewEmpty() *Document {
	return &Document{Blocks: []Block{{Type: Paragraph}}}
}

func (d *Document) Clone() *Document {
	c := &Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		c.Blocks[i] = b.clone()
	}
	return c
}

// Normalize returns the canonical copy of d: runs are cleaned, empty runs
// dropped, adjacent runs with equal marks merged, heading levels clamped to
// 1 or 2, attributes that do not belong to a block type cleared, and images
// without a source removed.
func (d *Document) Normalize() *Document {
	out := &Document{Blocks: make([]Block, 0, len(d.Blocks))}
	for _, b := range d.Blocks {
		nb, ok := normalizeBlock(b)
		if ok {
			out.Blocks = append(out.Blocks, nb)
		}
	}
	return out
}

func normalizeBlock(b Block) (Block, bool) {
	switch b.Type {
	case Image:
		src := cleanText(strings.TrimSpace(b.Src))
		if src == "" {
			return Block{}, false
		}
		return Block{Type: Image, Src: src, Alt: cleanText(b.Alt)}, true
	case Heading:
		level := 2
		if b.Level <= 1 {
			level = 1
		}
		return Block{Type: Heading, Level: level, Inlines: mergeRuns(b.Inlines)}, true
	case Paragraph, BulletList, OrderedList, Blockquote:
		return Block{Type: b.Type, Inlines: mergeRuns(b.Inlines)}, true
	default:
		return Block{Type: Paragraph, Inlines: mergeRuns(b.Inlines)}, true
	}
}

// mergeRuns canonicalizes a run sequence. The result is nil when no text
// remains.
func mergeRuns(in []Inline) []Inline {
	var out []Inline
	for _, r := range in {
		text := cleanText(r.Text)
		if text == "" {
			continue
		}
		marks := r.Marks.WithLink(r.Marks.Href)
		if n := len(out); n > 0 && out[n-1].Marks == marks {
			out[n-1].Text += text
			continue
		}
		out = append(out, Inline{Text: text, Marks: marks})
	}
	return out
}

// cleanText folds the characters the HTML parser would rewrite anyway, so
// that text survives a serialize/deserialize cycle unchanged.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "�")
	if strings.ContainsAny(s, "\r\x00") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		s = strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

// Equal reports whether a and b are structurally equal once canonicalized.
func Equal(a, b *Document) bool {
	na, nb := a.Normalize(), b.Normalize()
	if len(na.Blocks) != len(nb.Blocks) {
		return false
	}
	for i := range na.Blocks {
		x, y := na.Blocks[i], nb.Blocks[i]
		if x.Type != y.Type || x.Level != y.Level || x.Src != y.Src || x.Alt != y.Alt {
			return false
		}
		if len(x.Inlines) != len(y.Inlines) {
			return false
		}
		for j := range x.Inlines {
			if x.Inlines[j] != y.Inlines[j] {
				return false
			}
		}
	}
	return true
}
