package models

// Shape selects which report the pipeline builds.
type Shape string

const (
	ShapeMatrix    Shape = "matrix"
	ShapeFrequency Shape = "frequency"
	ShapeLag       Shape = "lag"
)

// Bucket is the time bucket used by the frequency report.
type Bucket string

const (
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// LagMode selects how lag values are rendered.
type LagMode string

const (
	// LagDuration renders "Nd, Nh, Nm" strings.
	LagDuration LagMode = "duration"
	// LagDays renders a day count rounded to two decimals.
	LagDays LagMode = "days"
)

// ReportRequest carries the resolved request parameters. Nil pointers mean
// "not supplied".
type ReportRequest struct {
	Shape   Shape
	Bucket  Bucket
	LagMode LagMode

	// DomainID is the scope root. Nil disables scoping.
	DomainID *int64
	AppID    *int64
	AppName  string

	// Environment is accepted for compatibility and not used by reshaping.
	Environment string
}
