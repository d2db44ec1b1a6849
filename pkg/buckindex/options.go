package buckindex

// ModelMode selects the fitting strategy used for inner-layer (segment)
// models, per spec §4.1/§6.
type ModelMode uint8

const (
	// ModelEndpoints fits a line through the first and last point.
	ModelEndpoints ModelMode = iota
	// ModelRegression fits an ordinary-least-squares line, falling back
	// to ModelEndpoints when the derived slope collapses to <= 0.
	ModelRegression
)

func (m ModelMode) String() string {
	if m == ModelRegression {
		return "regression"
	}

	return "endpoints"
}

func (m ModelMode) fitter() Fitter {
	if m == ModelRegression {
		return RegressionFitter{}
	}

	return EndpointsFitter{}
}

// Options carries every build-time switch spec §6 documents as
// "recognized configuration". The zero value is not usable; use
// [DefaultOptions] or [internal/config.LoadIndexOptions].
type Options struct {
	// DataBucketSize is the D-bucket (leaf) capacity.
	DataBucketSize int
	// SegmentBucketSize is the S-bucket (inner) capacity.
	SegmentBucketSize int
	// InitialFillRatio is the target load factor at bulk-load, in (0,1].
	InitialFillRatio float64
	// ErrorBound is the GEC tolerance (epsilon) for inner-layer
	// segmentation. Must be >= 1.
	ErrorBound float64
	// MergeNSMOThreshold is the SMO-count trigger for neighbor-merge.
	MergeNSMOThreshold uint32
	// MergeWindowSize bounds how many neighbors on each side of a leaf
	// are considered for the avg_smo computation.
	MergeWindowSize int
	// HintMode selects the bucket probe-hint strategy.
	HintMode HintKind
	// ModelMode selects the inner-layer model fit strategy.
	ModelMode ModelMode
}

// DefaultOptions returns reasonable defaults matching spec §2/§4's
// "typically" values: a 64-slot D-bucket, an 8-slot S-bucket, a fill
// ratio of 0.7, and an error bound of 16.
func DefaultOptions() Options {
	return Options{
		DataBucketSize:     64,
		SegmentBucketSize:  8,
		InitialFillRatio:   0.7,
		ErrorBound:         16,
		MergeNSMOThreshold: 5,
		MergeWindowSize:    4,
		HintMode:           HintModel,
		ModelMode:          ModelEndpoints,
	}
}

// validate checks the invariants spec §6 implies (fill_ratio in (0,1],
// error_bound >= 1) and clamps/derives sane bucket sizes.
func (o Options) validate() Options {
	if o.DataBucketSize <= 0 {
		o.DataBucketSize = 64
	}

	if o.SegmentBucketSize <= 0 {
		o.SegmentBucketSize = 8
	}

	if o.InitialFillRatio <= 0 || o.InitialFillRatio > 1 {
		o.InitialFillRatio = 0.7
	}

	if o.ErrorBound < 1 {
		o.ErrorBound = 1
	}

	if o.MergeWindowSize <= 0 {
		o.MergeWindowSize = 4
	}

	return o
}
