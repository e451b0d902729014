package editor

import "context"

// Uploader turns raw image bytes into a URL the document can reference.
// media.Resolver is the production implementation.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// UploadImage uploads data and inserts the resulting image at the cursor.
// Only one upload may be in flight per session; a failed upload leaves the
// document untouched and returns the uploader's error unchanged.
func (s *Session) UploadImage(ctx context.Context, up Uploader, data []byte) (string, error) {
	if s.Closed() {
		return "", ErrClosed
	}
	if !s.uploading.CompareAndSwap(false, true) {
		return "", ErrUploadInFlight
	}
	defer s.uploading.Store(false)

	url, err := up.Upload(ctx, data)
	if err != nil {
		return "", err
	}
	if !s.InsertImage(url) && s.Closed() {
		return url, ErrClosed
	}
	return url, nil
}

// Uploading reports whether an upload is in flight, so a surface can
// disable its image button.
func (s *Session) Uploading() bool {
	return s.uploading.Load()
}
