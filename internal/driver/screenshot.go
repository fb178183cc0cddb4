package driver

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pkg/errors"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

const (
	captureQuality = 80
	encodeQuality  = 75
)

// Screenshot is a captured browser viewport image.
type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Screenshot captures the current viewport as JPEG, downscaled to the
// configured maximum width.
func (d *Driver) Screenshot(ctx context.Context) (*Screenshot, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}

	data, err := d.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(captureQuality),
	})
	if err != nil {
		return nil, TranslateWrap(err, "screenshot failed")
	}

	shot, err := scaleJPEG(data, d.opts.ScreenshotMaxWidth, encodeQuality)
	if err != nil {
		return nil, NewError(CodeDriver, err)
	}
	return shot, nil
}

// SaveScreenshot captures the viewport and writes it to path.
func (d *Driver) SaveScreenshot(ctx context.Context, path string) error {
	d.log.Info("saving screenshot", zap.String("path", path))

	shot, err := d.Screenshot(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		return errors.Wrapf(err, "write screenshot %s", path)
	}
	return nil
}

// scaleJPEG re-encodes image data as JPEG, resizing down to maxWidth
// when the source is wider. Zero maxWidth keeps the original size.
func scaleJPEG(data []byte, maxWidth, quality int) (*Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "image decode failed")
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "jpeg encode failed")
	}

	return &Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
