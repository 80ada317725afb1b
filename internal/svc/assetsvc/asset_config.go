package assetsvc

// AssetConfig holds configuration parameters for the asset service.
type AssetConfig struct {
	// MaxBytes is the largest accepted upload. Default is 5MB.
	MaxBytes int64 `env:"MAX_BYTES" default:"5242880"`

	// MaxDimension bounds the longest side of a stored image in pixels.
	// Larger images are scaled down, keeping their aspect ratio.
	MaxDimension int `env:"MAX_DIMENSION" default:"1024"`

	// MaxSourcePixels bounds width*height of an upload before it is decoded.
	MaxSourcePixels int64 `env:"MAX_SOURCE_PIXELS" default:"50000000"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// URLPrefix is prepended to asset ids to build their public URL.
	URLPrefix string `env:"URL_PREFIX" default:"/api/assets/"`
}
