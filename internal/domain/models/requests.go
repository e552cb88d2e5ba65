package models

// ProcessRequest asks the coordinator for a report, optionally bypassing the
// staleness and market-hours checks.
type ProcessRequest struct {
	Period string `json:"period" query:"period" validate:"omitempty,max=8"`
	Force  bool   `json:"force" query:"force"`
}

// ReportRequest fetches the latest report for a period.
type ReportRequest struct {
	Period string `json:"period" query:"period" validate:"omitempty,max=8"`
}
