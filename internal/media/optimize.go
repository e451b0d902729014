package media

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/nfnt/resize"
)

const (
	DefaultMaxWidth    = 1200
	DefaultJPEGQuality = 80
)

// Optimize decodes data, shrinks it to at most maxWidth pixels wide keeping
// the aspect ratio, and re-encodes it as JPEG. Images already narrow enough
// are re-encoded without scaling.
func Optimize(data []byte, maxWidth, quality int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, ErrUnsupported
		}
		return nil, err
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sniff returns the content type of data and the file extension to store
// it under. It reports false for anything that is not an image.
func sniff(data []byte) (string, string, bool) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/png":
		return ct, ".png", true
	case "image/gif":
		return ct, ".gif", true
	case "image/webp":
		return ct, ".webp", true
	case "image/jpeg":
		return ct, ".jpg", true
	case "image/bmp":
		return ct, ".bmp", true
	}
	return "", "", false
}
