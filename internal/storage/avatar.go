package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrTooManyPixels   = errors.New("image dimensions too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// MaxImagePixels bounds width*height of an accepted upload before it is decoded.
const MaxImagePixels = 4096 * 4096

// AllowedImageTypes are the sniffed content types accepted as avatars.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Image is an encoded image ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Reader returns a seekable reader over the encoded bytes.
func (i *Image) Reader() io.ReadSeeker { return bytes.NewReader(i.Data) }

// ProcessAvatar reads at most maxBytes from r, checks the sniffed type and
// crops the image to a size x size square. PNG, GIF and WebP come out as PNG,
// everything else as JPEG.
func ProcessAvatar(r io.Reader, maxBytes int64, size int) (*Image, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(raw)
	if !AllowedImageTypes[contentType] {
		return nil, ErrUnsupportedType
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, ErrTooManyPixels
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	if contentType == "image/jpeg" {
		return encode(thumb, imaging.JPEG, "image/jpeg", ".jpg", imaging.JPEGQuality(85))
	}
	return encode(thumb, imaging.PNG, "image/png", ".png")
}

func encode(img image.Image, format imaging.Format, contentType, ext string, opts ...imaging.EncodeOption) (*Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, err
	}
	return &Image{Data: buf.Bytes(), ContentType: contentType, Ext: ext}, nil
}

// AvatarKey names a new avatar object for an owner, e.g. "avatars/clients/<id>/<uuid>.jpg".
func AvatarKey(kind, ownerID, ext string) string {
	return path.Join("avatars", kind, ownerID, fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), ext))
}
