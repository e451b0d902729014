// Package media resolves uploaded image bytes into URLs that articles can
// reference. Images are optimized before they are stored.
package media

import (
	"context"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"fmasite/pkg/logger"
)

const (
	// Folder is the key prefix every upload is stored under.
	Folder = "news"
	// ListLimit caps List results.
	ListLimit = 100
)

// File is an entry of the media library.
type File struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type Option func(*Resolver)

func WithMaxWidth(px int) Option {
	return func(r *Resolver) {
		if px > 0 {
			r.maxWidth = px
		}
	}
}

func WithJPEGQuality(q int) Option {
	return func(r *Resolver) {
		if q > 0 && q <= 100 {
			r.quality = q
		}
	}
}

// WithStrictOptimize makes an image that cannot be optimized fail the
// upload instead of being stored as it came.
func WithStrictOptimize() Option {
	return func(r *Resolver) { r.strict = true }
}

// Resolver uploads images to a Store and hands back their public URL.
type Resolver struct {
	store    Store
	maxWidth int
	quality  int
	strict   bool
	newID    func() string
}

func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		maxWidth: DefaultMaxWidth,
		quality:  DefaultJPEGQuality,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upload optimizes data, stores it under news/<uuid>.jpg and returns its
// public URL. Every failure is an *UploadError.
func (r *Resolver) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &UploadError{Op: "optimize", Err: ErrEmptyImage}
	}

	body, contentType, ext := data, "", ""
	optimized, err := Optimize(data, r.maxWidth, r.quality)
	switch {
	case err == nil:
		body, contentType, ext = optimized, "image/jpeg", ".jpg"
	case r.strict:
		return "", &UploadError{Op: "optimize", Err: err}
	default:
		var ok bool
		if contentType, ext, ok = sniff(data); !ok {
			return "", &UploadError{Op: "optimize", Err: ErrUnsupported}
		}
		logger.Sugar.Warnf("Storing image unoptimized (%s): %v", contentType, err)
	}

	key := path.Join(Folder, r.newID()+ext)
	if err := r.store.Put(ctx, key, body, contentType); err != nil {
		return "", &UploadError{Op: "store", Key: key, Err: err}
	}
	logger.Sugar.Infof("Stored image %s (%d bytes)", key, len(body))
	return r.store.URL(key), nil
}

// List returns the newest ListLimit files of the media library.
func (r *Resolver) List(ctx context.Context) ([]File, error) {
	objects, err := r.store.List(ctx, Folder+"/")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(objects, func(a, b Object) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(objects) > ListLimit {
		objects = objects[:ListLimit]
	}

	files := make([]File, 0, len(objects))
	for _, o := range objects {
		files = append(files, File{
			Name:      path.Base(o.Key),
			URL:       r.store.URL(o.Key),
			Size:      o.Size,
			CreatedAt: o.CreatedAt,
		})
	}
	return files, nil
}

// Delete removes one file of the library by its name.
func (r *Resolver) Delete(ctx context.Context, name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return ErrInvalidName
	}
	key := path.Join(Folder, name)
	if err := r.store.Remove(ctx, key); err != nil {
		return &UploadError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
