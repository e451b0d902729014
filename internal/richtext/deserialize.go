package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"fmasite/pkg/logger"
)

type tagKind int

const (
	tagInline tagKind = iota // unknown inline element: unwrapped, text kept
	tagContainer             // unknown block element: unwrapped in block context
	tagDrop                  // dropped together with its content
	tagParagraph
	tagHeading
	tagList
	tagListItem
	tagQuote
	tagImage
	tagBold
	tagItalic
	tagUnderline
	tagLink
	tagBreak
)

// classify maps a tag to its role. Anything outside the vocabulary falls
// through to one of the unwrap kinds.
func classify(a atom.Atom) tagKind {
	switch a {
	case atom.P:
		return tagParagraph
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return tagHeading
	case atom.Ul, atom.Ol:
		return tagList
	case atom.Li:
		return tagListItem
	case atom.Blockquote:
		return tagQuote
	case atom.Img:
		return tagImage
	case atom.Strong, atom.B:
		return tagBold
	case atom.Em, atom.I:
		return tagItalic
	case atom.U:
		return tagUnderline
	case atom.A:
		return tagLink
	case atom.Br:
		return tagBreak
	case atom.Script, atom.Style, atom.Template, atom.Iframe, atom.Noscript,
		atom.Object, atom.Embed, atom.Head, atom.Title, atom.Svg, atom.Math:
		return tagDrop
	case atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main,
		atom.Nav, atom.Aside, atom.Figure, atom.Figcaption, atom.Table, atom.Thead,
		atom.Tbody, atom.Tfoot, atom.Tr, atom.Td, atom.Th, atom.Pre, atom.Hr,
		atom.Dl, atom.Dt, atom.Dd, atom.Form, atom.Fieldset, atom.Address,
		atom.Details, atom.Summary, atom.Body, atom.Html:
		return tagContainer
	default:
		return tagInline
	}
}

func headingLevel(a atom.Atom) int {
	if a == atom.H1 {
		return 1
	}
	return 2
}

// Deserialize turns persisted HTML into a Document. It never fails: empty
// input yields NewEmpty and unreadable input degrades to one paragraph of
// its plain text.
func Deserialize(content string) *Document {
	if strings.TrimSpace(content) == "" {
		return NewEmpty()
	}
	doc, err := Parse(content)
	if err != nil {
		logger.Sugar.Warnf("Falling back to plain text for unreadable content: %v", err)
		return &Document{Blocks: []Block{{
			Type:    Paragraph,
			Inlines: mergeRuns([]Inline{{Text: PlainText(content)}}),
		}}}
	}
	return doc
}

// Parse is Deserialize without the fallback; the error is a *ParseError.
func Parse(content string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, &ParseError{Err: fmt.Errorf("%v", r)}
		}
	}()

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, perr := html.ParseFragment(strings.NewReader(content), body)
	if perr != nil {
		return nil, &ParseError{Err: perr}
	}

	b := &builder{}
	b.container(nodes, Block{Type: Paragraph})
	doc = (&Document{Blocks: b.blocks}).Normalize()
	if len(doc.Blocks) == 0 {
		return NewEmpty(), nil
	}
	return doc, nil
}

type builder struct {
	blocks []Block
}

// piece is a text block being filled. Implicit pieces wrap loose inline
// content and are kept only when they end up with text; split pieces are
// the remainder of a block an image was hoisted out of.
type piece struct {
	block    Block
	implicit bool
	split    bool
}

func fresh(proto Block) Block {
	return Block{Type: proto.Type, Level: proto.Level}
}

func (b *builder) emit(p *piece) {
	if len(mergeRuns(p.block.Inlines)) > 0 || (!p.implicit && !p.split) {
		b.blocks = append(b.blocks, p.block)
	}
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		switch classify(n.DataAtom) {
		case tagInline, tagBold, tagItalic, tagUnderline, tagLink, tagBreak:
			return true
		}
	}
	return false
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// container walks block-level content. Loose inline content becomes a
// block of the proto type; nested paragraphs take the proto type too, so a
// <p> inside an <li> is a list item and inside a <blockquote> a quote.
func (b *builder) container(nodes []*html.Node, proto Block) {
	var open *piece
	flush := func() {
		if open != nil {
			b.emit(open)
			open = nil
		}
	}

	for i, c := range nodes {
		if isInline(c) {
			if isBlank(c) && (open == nil || i+1 >= len(nodes) || !isInline(nodes[i+1])) {
				continue
			}
			if open == nil {
				open = &piece{block: fresh(proto), implicit: true}
			}
			b.inline(c, MarkSet{}, open)
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}

		flush()
		switch kind := classify(c.DataAtom); kind {
		case tagParagraph, tagHeading:
			blk := fresh(proto)
			if kind == tagHeading && proto.Type == Paragraph {
				blk = Block{Type: Heading, Level: headingLevel(c.DataAtom)}
			}
			p := &piece{block: blk}
			b.inlineChildren(c, MarkSet{}, p)
			b.emit(p)
		case tagList:
			b.list(c)
		case tagListItem:
			t := proto.Type
			if t != BulletList && t != OrderedList {
				t = BulletList
			}
			b.atLeastOne(Block{Type: t}, func() { b.container(children(c), Block{Type: t}) })
		case tagQuote:
			quote := Block{Type: Blockquote}
			b.atLeastOne(quote, func() { b.container(children(c), quote) })
		case tagImage:
			if img, ok := imageBlock(c); ok {
				b.blocks = append(b.blocks, img)
			}
		case tagDrop:
		default:
			b.container(children(c), proto)
		}
	}
	flush()
}

func (b *builder) list(n *html.Node) {
	item := Block{Type: BulletList}
	if n.DataAtom == atom.Ol {
		item.Type = OrderedList
	}
	for _, c := range children(n) {
		switch {
		case isBlank(c):
		case c.Type == html.ElementNode && classify(c.DataAtom) == tagList:
			b.list(c)
		case c.Type == html.ElementNode && classify(c.DataAtom) == tagListItem:
			b.atLeastOne(item, func() { b.container(children(c), item) })
		default:
			b.container([]*html.Node{c}, item)
		}
	}
}

// atLeastOne runs fn and adds an empty proto block when fn produced none,
// so empty list items and quotes survive.
func (b *builder) atLeastOne(proto Block, fn func()) {
	n := len(b.blocks)
	fn()
	if len(b.blocks) == n {
		b.blocks = append(b.blocks, fresh(proto))
	}
}

func (b *builder) inlineChildren(n *html.Node, marks MarkSet, p *piece) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.inline(c, marks, p)
	}
}

func (b *builder) inline(n *html.Node, marks MarkSet, p *piece) {
	switch n.Type {
	case html.TextNode:
		p.block.Inlines = append(p.block.Inlines, Inline{Text: n.Data, Marks: marks})
		return
	case html.ElementNode:
	default:
		return
	}

	switch classify(n.DataAtom) {
	case tagDrop:
		return
	case tagBold:
		marks.Bold = true
	case tagItalic:
		marks.Italic = true
	case tagUnderline:
		marks.Underline = true
	case tagLink:
		if href := strings.TrimSpace(attr(n, "href")); href != "" {
			marks.Href = href
		}
	case tagBreak:
		p.block.Inlines = append(p.block.Inlines, Inline{Text: " ", Marks: marks})
		return
	case tagImage:
		b.hoist(n, p)
		return
	}
	b.inlineChildren(n, marks, p)
}

// hoist lifts an image out of running text: the text so far becomes its
// own block, the image follows, and p continues with the rest.
func (b *builder) hoist(n *html.Node, p *piece) {
	img, ok := imageBlock(n)
	if !ok {
		return
	}
	if len(mergeRuns(p.block.Inlines)) > 0 {
		b.blocks = append(b.blocks, p.block)
	}
	b.blocks = append(b.blocks, img)
	p.block = fresh(p.block)
	p.split = true
}

func imageBlock(n *html.Node) (Block, bool) {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		return Block{}, false
	}
	return Block{Type: Image, Src: src, Alt: attr(n, "alt")}, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
