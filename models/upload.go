package models

// UploadBatch is the most recent uploaded-but-unsaved record set for a user.
// A new upload overwrites it; saving to the database consumes it.
type UploadBatch struct {
	Records     []Record `json:"records"`
	UploadedAt  string   `json:"uploadedAt"`
	FileName    string   `json:"fileName"`
	RecordCount int      `json:"recordCount"`
}
