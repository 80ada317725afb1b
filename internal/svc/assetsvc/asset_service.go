package assetsvc

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/image/draw"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/blob"
)

var (
	// ErrInvalidImage is returned when an upload has a known format but cannot be decoded.
	ErrInvalidImage = fmt.Errorf("%w: image could not be decoded", domain.ErrValidation)
	// ErrImageTooManyPixels is returned when an upload is too large to decode safely.
	ErrImageTooManyPixels = fmt.Errorf("%w: image dimensions too large", domain.ErrAssetTooLarge)
)

// AssetService stores uploaded images as PNG blobs. Stored content is
// addressed by its hash, so uploading the same image twice yields one blob.
type AssetService struct {
	repo     blob.Repository
	interpol draw.Interpolator
	cfg      AssetConfig
	log      logging.Logger
}

// NewAssetService creates an AssetService storing into the "assets"
// repository of repoFactory.
func NewAssetService(ctx context.Context, repoFactory blob.RepositoryFactory, cfg AssetConfig) (*AssetService, error) {
	interpol, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, err
	}

	repo, err := repoFactory(ctx, "assets", "png")
	if err != nil {
		return nil, fmt.Errorf("new asset repository: %w", err)
	}

	return &AssetService{
		repo:     repo,
		interpol: interpol,
		cfg:      cfg,
		log:      logging.GetLogger("svc.assetsvc.asset_service"),
	}, nil
}

// MaxBytes returns the maximum accepted upload size in bytes.
func (svc *AssetService) MaxBytes() int64 {
	return svc.cfg.MaxBytes
}

// URL returns the public URL of asset id.
func (svc *AssetService) URL(id domain.BlobID) string {
	return svc.cfg.URLPrefix + id.String()
}

// Upload normalizes the image in data and stores it.
func (svc *AssetService) Upload(
	ctx context.Context,
	user *domain.User,
	filename string,
	data []byte,
) (resp *domain.AssetResponse, err error) {
	log := svc.log.With(logging.Group("asset", "filename", filename, "size", len(data), "owner", user.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "asset upload failed", "error", err)
		} else {
			log.DebugContext(ctx, "asset uploaded", "id", resp.ID)
		}
	}()

	if int64(len(data)) > svc.cfg.MaxBytes {
		return nil, domain.ErrAssetTooLarge
	}

	format, err := sniffFormat(data)
	if err != nil {
		return nil, err
	}

	log = log.With(logging.Group("asset", "type", format.mimeType))

	normalized, err := svc.normalize(format, data)
	if err != nil {
		return nil, err
	}

	id := blob.ContentID(normalized)

	if err := svc.repo.Store(ctx, domain.NewBlob(id, normalized)); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	return &domain.AssetResponse{ID: id.String(), URL: svc.URL(id)}, nil
}

func (svc *AssetService) normalize(format imageFormat, data []byte) ([]byte, error) {
	config, err := format.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if svc.cfg.MaxSourcePixels > 0 && int64(config.Width)*int64(config.Height) > svc.cfg.MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooManyPixels, config.Width, config.Height)
	}

	original, err := format.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	return encodePNG(fitImage(original, svc.cfg.MaxDimension, svc.interpol))
}

// Fetch returns the stored asset with the given id.
// Returns domain.ErrAssetNotFound if the id is malformed or unknown.
func (svc *AssetService) Fetch(ctx context.Context, rawID string) (asset *domain.Asset, err error) {
	log := svc.log.With(logging.Group("asset", "id", rawID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "asset fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "asset fetched")
		}
	}()

	id, ok := blob.ParseID(rawID)
	if !ok {
		return nil, domain.ErrAssetNotFound
	}

	stored, err := svc.repo.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	return &domain.Asset{ID: id, MIMEType: MIMETypePNG, Data: stored.Bytes()}, nil
}
