package models

// Requests for chart HTTP endpoints and the Kafka request topic.

// ChartRequest carries a birth moment as the caller typed it. Every field
// but RequestID and Timezone is mandatory; coordinates are pointers so that
// an omitted value is told apart from 0.
type ChartRequest struct {
	RequestID string   `query:"request_id" json:"request_id,omitempty"`
	Date      string   `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time      string   `query:"time" json:"time" validate:"required,datetime=15:04"`
	Latitude  *float64 `query:"lat" json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `query:"lon" json:"longitude" validate:"required,gte=-180,lte=180"`
	Timezone  string   `query:"timezone" json:"timezone,omitempty" validate:"omitempty,timezone"`
}

// BatchChartRequest only bounds the batch; items are validated one by one
// so that a bad item fails alone.
type BatchChartRequest struct {
	Charts []ChartRequest `json:"charts" validate:"required,min=1,max=100"`
}

// SkyRequest asks for the chart of an instant; At is RFC3339 or unix
// seconds and defaults to now.
type SkyRequest struct {
	At        string  `query:"at"`
	Latitude  float64 `query:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `query:"lon" validate:"gte=-180,lte=180"`
}

type SkyStreamRequest struct {
	Latitude  float64 `query:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `query:"lon" validate:"gte=-180,lte=180"`
	Interval  int     `query:"interval" default:"60" validate:"gte=1,lte=3600"` // seconds
}

// BatchItem is one entry of a batch response. Exactly one of Chart and
// Error is set.
type BatchItem struct {
	Index int          `json:"index"`
	Chart *ChartResult `json:"chart,omitempty"`
	Error string       `json:"error,omitempty"`
}
