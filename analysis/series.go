package analysis

import (
	"errors"
	"math"

	"github.com/sartorproj/featurespace/errs"
	"github.com/sartorproj/featurespace/spectral"
	"github.com/sartorproj/featurespace/stats"
	"github.com/sartorproj/featurespace/timeseries"
)

// Stationarity groups the unit-root and stationarity tests of a series.
type Stationarity struct {
	ADF            *stats.ADFResult            `json:"adf,omitempty"`
	KPSS           *stats.KPSSResult           `json:"kpss,omitempty"`
	PhillipsPerron *stats.PhillipsPerronResult `json:"phillips_perron,omitempty"`
	NDiffs         int                         `json:"ndiffs"`
	NSDiffs        int                         `json:"nsdiffs"`
}

// SeriesReport is the single-series view: summary statistics, spectra,
// density, correlograms and tests.
type SeriesReport struct {
	ID              string                   `json:"unique_id"`
	Period          int                      `json:"period"`
	Description     timeseries.Description   `json:"description"`
	FFT             *spectral.Spectrum       `json:"fft"`
	PSD             *spectral.Spectrum       `json:"psd"`
	KDE             *spectral.Density        `json:"kde"`
	ACF             *stats.CorrelogramResult `json:"acf,omitempty"`
	PACF            *stats.CorrelogramResult `json:"pacf,omitempty"`
	SignificantLags []int                    `json:"significant_lags,omitempty"`
	LjungBox        *stats.LjungBoxResult    `json:"ljung_box,omitempty"`
	BoxPierce       *stats.LjungBoxResult    `json:"box_pierce,omitempty"`
	Stationarity    *Stationarity            `json:"stationarity,omitempty"`
	Decomposition   *stats.STLResult         `json:"decomposition,omitempty"`
	// Durbin-Watson statistic of the STL residual.
	DurbinWatson *stats.DurbinWatsonResult `json:"durbin_watson,omitempty"`
}

// DescribeSeries builds the report of s. Correlograms cover lags up to
// lags (default min(10, n/5) as used by Ljung-Box). Tests are skipped for
// constant series, and the STL decomposition is omitted when the series is
// shorter than two periods.
func DescribeSeries(s *timeseries.Series, period, lags int) (*SeriesReport, error) {
	if s == nil || s.Len() == 0 {
		return nil, errs.InvalidParameter("empty series")
	}
	if period < 1 {
		return nil, errs.InvalidParameter("period must be a positive integer, got %d", period)
	}
	values := s.Values
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errs.NonNumeric("series %q: value %d is %v", s.Name, i, v)
		}
	}
	n := len(values)
	if lags < 1 {
		lags = max(1, min(10, n/5))
	}

	r := &SeriesReport{
		ID:          s.Name,
		Period:      period,
		Description: timeseries.Describe(s),
		FFT:         spectral.FFT(values),
		PSD:         spectral.Welch(values, nil),
		KDE:         spectral.GaussianKDE(values, spectral.DefaultBandwidth, spectral.DefaultKDEPoints),
	}
	if n < 2 {
		return r, nil
	}
	r.ACF = stats.ACFWithConfidence(values, lags)
	if r.ACF == nil {
		// Constant: correlations and tests are undefined.
		return r, nil
	}
	r.PACF = stats.PACFWithConfidence(values, lags)
	r.SignificantLags = stats.SignificantLags(r.ACF.Values, r.ACF.ConfBounds)
	r.LjungBox = stats.LjungBox(values, lags, 0)
	r.BoxPierce = stats.BoxPierce(values, lags, 0)
	r.Stationarity = &Stationarity{
		ADF:            stats.ADF(values, 0),
		KPSS:           stats.KPSS(values, "c", 0),
		PhillipsPerron: stats.PhillipsPerron(values, 0),
		NDiffs:         stats.NDiffs(values, 2, "kpss"),
		NSDiffs:        stats.NSDiffs(values, period, 1),
	}

	if period > 1 && n >= 2*period {
		stl, err := stats.STL(values, period, nil)
		switch {
		case errors.Is(err, errs.ErrDecomposition):
		case err != nil:
			return nil, err
		default:
			r.Decomposition = stl
			r.DurbinWatson = stats.DurbinWatson(stl.Residual)
		}
	}
	return r, nil
}
