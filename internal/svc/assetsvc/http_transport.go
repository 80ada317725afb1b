package assetsvc

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// HTTPTransportConfig holds the upload form settings of the asset endpoints.
type HTTPTransportConfig struct {
	// MultipartFileName is the form field carrying the upload.
	MultipartFileName string `env:"MULTIPART_FILE_NAME" default:"file"`

	// MultipartFormMaxMemory is the part of a multipart form kept in memory.
	// Default is 10MB.
	MultipartFormMaxMemory int64 `env:"MULTIPART_FORM_MAX_SIZE" default:"10485760"`
}

// formOverhead is allowed on top of the file size for multipart framing.
const formOverhead = 64 << 10

var ErrNoMultipartFile = fmt.Errorf("%w: no file in upload", domain.ErrValidation)

// HTTPTransport exposes the asset service over HTTP.
type HTTPTransport struct {
	assetSvc *AssetService
	log      logging.Logger
	cfg      HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(assetSvc *AssetService, cfg HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		assetSvc: assetSvc,
		log:      logging.GetLogger("svc.assetsvc.http_transport"),
		cfg:      cfg,
	}
}

// RegisterRoutes sets up the asset endpoints:
// - POST /api/assets: upload an image (authenticated)
// - GET /api/assets/{id}: download a stored image
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assets", http_.HandleErrors(ht.log, "asset upload", ht.upload))
	mux.HandleFunc("GET /api/assets/{id}", http_.HandleErrors(ht.log, "asset download", ht.download))
}

func (ht *HTTPTransport) upload(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, ht.assetSvc.MaxBytes()+formOverhead)

	if err := r.ParseMultipartForm(ht.cfg.MultipartFormMaxMemory); err != nil {
		if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
			return fmt.Errorf("%w: %w", domain.ErrAssetTooLarge, err)
		}

		return &http_.RequestError{Message: "invalid multipart form"}
	}

	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(ht.cfg.MultipartFileName)
	if err != nil {
		return ErrNoMultipartFile
	}
	defer file.Close()

	if header.Size > ht.assetSvc.MaxBytes() {
		return domain.ErrAssetTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", header.Filename, err)
	}

	resp, err := ht.assetSvc.Upload(r.Context(), user, header.Filename, data)
	if err != nil {
		return err
	}

	w.Header().Set("Location", resp.URL)

	return http_.WriteJSON(w, http.StatusCreated, resp)
}

func (ht *HTTPTransport) download(w http.ResponseWriter, r *http.Request) error {
	asset, err := ht.assetSvc.Fetch(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}

	etag := `"` + asset.ID.String() + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)

		return nil
	}

	w.Header().Set("Content-Type", asset.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", etag)

	if _, err := w.Write(asset.Data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
