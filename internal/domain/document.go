package domain

import "time"

// DocumentStatus represents the processing state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "Pending"
	DocumentStatusProcessing DocumentStatus = "Processing"
	DocumentStatusCompleted  DocumentStatus = "Completed"
	DocumentStatusFailed     DocumentStatus = "Failed"
)

// MaxFailedReasonLength bounds the persisted failure reason.
const MaxFailedReasonLength = 500

// Document is an uploaded course file tracked through the
// Pending -> Processing -> {Completed, Failed} pipeline.
type Document struct {
	ID           int64
	CourseID     int64
	Course       *Course
	FileName     string
	StoredKey    string
	FileSize     int64
	Status       DocumentStatus
	UploadedAt   time.Time
	ProcessedAt  *time.Time
	FailedReason string
}

// MarkProcessing transitions the document into Processing and clears any
// prior failure reason.
func (d *Document) MarkProcessing() {
	d.Status = DocumentStatusProcessing
	d.FailedReason = ""
}

// MarkCompleted stamps the processed timestamp and clears the failure reason.
func (d *Document) MarkCompleted(at time.Time) {
	d.Status = DocumentStatusCompleted
	d.ProcessedAt = &at
	d.FailedReason = ""
}

// MarkFailed records the failure reason, truncated to the storage bound.
func (d *Document) MarkFailed(reason string) {
	d.Status = DocumentStatusFailed
	d.ProcessedAt = nil
	runes := []rune(reason)
	if len(runes) > MaxFailedReasonLength {
		reason = string(runes[:MaxFailedReasonLength])
	}
	d.FailedReason = reason
}

// IsValidDocumentStatus checks if a DocumentStatus is one of the known states.
func IsValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}
