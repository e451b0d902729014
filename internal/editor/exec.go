package editor

import (
	"errors"
	"fmt"

	"fmasite/internal/richtext"
)

var ErrUnknownCommand = errors.New("editor: unknown command")

// Command is the wire form of a toolbar or keyboard action.
type Command struct {
	Name      string              `json:"name"`
	Mark      string              `json:"mark,omitempty"`
	Block     string              `json:"block,omitempty"`
	Level     int                 `json:"level,omitempty"`
	Href      string              `json:"href,omitempty"`
	Src       string              `json:"src,omitempty"`
	Text      string              `json:"text,omitempty"`
	Selection *richtext.Selection `json:"selection,omitempty"`
	// Data is the image of an uploadImage command, base64 on the wire. The
	// transport runs uploads through UploadImage; Exec rejects them.
	Data []byte `json:"data,omitempty"`
}

// Exec runs c and reports whether the document changed. A selection sent
// along with the command is applied first.
func (s *Session) Exec(c Command) (bool, error) {
	if s.Closed() {
		return false, ErrClosed
	}
	if c.Selection != nil {
		s.Select(*c.Selection)
	}

	switch c.Name {
	case "select":
		return false, nil
	case "toggleMark":
		m, ok := richtext.ParseMarkType(c.Mark)
		if !ok {
			return false, fmt.Errorf("%w: mark %q", ErrUnknownCommand, c.Mark)
		}
		return s.ToggleMark(m), nil
	case "setBlockType", "toggleBlockType":
		t, ok := richtext.ParseBlockType(c.Block)
		if !ok {
			return false, fmt.Errorf("%w: block %q", ErrUnknownCommand, c.Block)
		}
		if c.Name == "toggleBlockType" {
			return s.ToggleBlockType(t, c.Level), nil
		}
		return s.SetBlockType(t, c.Level), nil
	case "setLink":
		return s.SetLink(c.Href), nil
	case "unsetLink":
		return s.UnsetLink(), nil
	case "insertImage":
		return s.InsertImage(c.Src), nil
	case "insertText":
		return s.InsertText(c.Text), nil
	case "splitBlock":
		return s.SplitBlock(), nil
	case "deleteBackward":
		return s.DeleteBackward(), nil
	case "undo":
		return s.Undo(), nil
	case "redo":
		return s.Redo(), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
}
