package features

// Canonical feature names.
const (
	Length           = "length"
	TrendStrength    = "trend_strength"
	SeasonalStrength = "seasonal_strength"
	Linearity        = "linearity"
	Curvature        = "curvature"
	Spikiness        = "spikiness"
	EACF1            = "e_acf1"
	EACF10           = "e_acf10"
	Stability        = "stability"
	Lumpiness        = "lumpiness"
	Entropy          = "entropy"
)

// Supplementary feature names.
const (
	XACF1          = "x_acf1"
	XACF10         = "x_acf10"
	Diff1ACF1      = "diff1_acf1"
	Diff1ACF10     = "diff1_acf10"
	Diff2ACF1      = "diff2_acf1"
	Diff2ACF10     = "diff2_acf10"
	SeasACF1       = "seas_acf1"
	XPACF5         = "x_pacf5"
	Diff1XPACF5    = "diff1x_pacf5"
	Diff2XPACF5    = "diff2x_pacf5"
	SeasPACF       = "seas_pacf"
	UnitrootKPSS   = "unitroot_kpss"
	UnitrootPP     = "unitroot_pp"
	CrossingPoints = "crossing_points"
	FlatSpots      = "flat_spots"
	NPeriods       = "nperiods"
	SeasonalPeriod = "seasonal_period"
	Peak           = "peak"
	Trough         = "trough"
)

// DefaultTileWidth is the tile width for stability and lumpiness when
// the series has no seasonal period.
const DefaultTileWidth = 21
