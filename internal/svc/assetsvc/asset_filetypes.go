package assetsvc

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/mkrupp/jobboard/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeGIF  = "image/gif"
	MIMETypeTIFF = "image/tiff"
	MIMETypeWebP = "image/webp"
)

type imageFormat struct {
	mimeType     string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
	matches      func(header []byte) bool
}

func hasAnyPrefix(prefixes ...string) func([]byte) bool {
	return func(header []byte) bool {
		for _, prefix := range prefixes {
			if bytes.HasPrefix(header, []byte(prefix)) {
				return true
			}
		}

		return false
	}
}

// isWebP matches a RIFF container of type WEBP.
func isWebP(header []byte) bool {
	return len(header) >= 12 && string(header[0:4]) == "RIFF" && string(header[8:12]) == "WEBP"
}

//nolint:gochecknoglobals
var imageFormats = []imageFormat{
	{MIMETypeJPEG, jpeg.Decode, jpeg.DecodeConfig, hasAnyPrefix("\xFF\xD8\xFF")},
	{MIMETypePNG, png.Decode, png.DecodeConfig, hasAnyPrefix("\x89\x50\x4E\x47\x0D\x0A\x1A\x0A")},
	{MIMETypeGIF, gif.Decode, gif.DecodeConfig, hasAnyPrefix("GIF87a", "GIF89a")},
	{MIMETypeTIFF, tiff.Decode, tiff.DecodeConfig, hasAnyPrefix("\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A")},
	{MIMETypeWebP, webp.Decode, webp.DecodeConfig, isWebP},
}

// sniffFormat identifies the image format of data by its magic bytes.
// The file name is not consulted.
func sniffFormat(data []byte) (imageFormat, error) {
	for _, format := range imageFormats {
		if format.matches(data) {
			return format, nil
		}
	}

	return imageFormat{}, fmt.Errorf("%w: not a JPEG, PNG, GIF, TIFF or WebP image", domain.ErrUnsupportedMediaType)
}
