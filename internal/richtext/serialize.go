package richtext

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Serialize renders d as persisted HTML. The output is canonical: runs with
// equal marks are merged, text and attributes are escaped, marks nest as
// a > strong > em > u, list items and quotes wrap their text in <p> and an
// empty document renders as one empty paragraph.
func Serialize(d *Document) string {
	blocks := d.Normalize().Blocks
	if len(blocks) == 0 {
		return "<p></p>"
	}

	var sb strings.Builder
	for i := 0; i < len(blocks); {
		b := blocks[i]
		switch b.Type {
		case BulletList, OrderedList, Blockquote:
			open, close := groupTags(b.Type)
			sb.WriteString(open)
			for ; i < len(blocks) && blocks[i].Type == b.Type; i++ {
				if b.Type != Blockquote {
					sb.WriteString("<li>")
				}
				sb.WriteString("<p>")
				writeRuns(&sb, blocks[i].Inlines)
				sb.WriteString("</p>")
				if b.Type != Blockquote {
					sb.WriteString("</li>")
				}
			}
			sb.WriteString(close)
			continue
		case Heading:
			level := strconv.Itoa(b.Level)
			sb.WriteString("<h" + level + ">")
			writeRuns(&sb, b.Inlines)
			sb.WriteString("</h" + level + ">")
		case Image:
			sb.WriteString(`<img src="`)
			sb.WriteString(html.EscapeString(b.Src))
			sb.WriteString(`"`)
			if b.Alt != "" {
				sb.WriteString(` alt="`)
				sb.WriteString(html.EscapeString(b.Alt))
				sb.WriteString(`"`)
			}
			sb.WriteString(">")
		case Paragraph:
			writeParagraph(&sb, b.Inlines)
		default:
			writeParagraph(&sb, b.Inlines)
		}
		i++
	}
	return sb.String()
}

func groupTags(t BlockType) (string, string) {
	switch t {
	case OrderedList:
		return "<ol>", "</ol>"
	case Blockquote:
		return "<blockquote>", "</blockquote>"
	default:
		return "<ul>", "</ul>"
	}
}

func writeParagraph(sb *strings.Builder, runs []Inline) {
	sb.WriteString("<p>")
	writeRuns(sb, runs)
	sb.WriteString("</p>")
}

func writeRuns(sb *strings.Builder, runs []Inline) {
	for _, r := range runs {
		m := r.Marks
		if m.Href != "" {
			sb.WriteString(`<a href="`)
			sb.WriteString(html.EscapeString(m.Href))
			sb.WriteString(`">`)
		}
		if m.Bold {
			sb.WriteString("<strong>")
		}
		if m.Italic {
			sb.WriteString("<em>")
		}
		if m.Underline {
			sb.WriteString("<u>")
		}
		sb.WriteString(html.EscapeString(r.Text))
		if m.Underline {
			sb.WriteString("</u>")
		}
		if m.Italic {
			sb.WriteString("</em>")
		}
		if m.Bold {
			sb.WriteString("</strong>")
		}
		if m.Href != "" {
			sb.WriteString("</a>")
		}
	}
}
