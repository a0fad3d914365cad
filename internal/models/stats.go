package models

// Stats summarizes the stored collection.
type Stats struct {
	ReportCount   int
	DayCount      int
	TotalReads    int64
	SchemaVersion int64
}
