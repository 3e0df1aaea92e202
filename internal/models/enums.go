package models

// ProductType distinguishes the two offer pipelines
type ProductType string

const (
	ProductHealth ProductType = "health"
	ProductCasco  ProductType = "casco"
)

// ExtractionStatus represents the outcome of extracting one uploaded document
type ExtractionStatus string

const (
	ExtractionPending ExtractionStatus = "pending"
	ExtractionParsed  ExtractionStatus = "parsed"
	ExtractionError   ExtractionStatus = "error"
)

// JobStatus represents the aggregate state of one upload batch
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsValidProductType checks if a product type is valid
func IsValidProductType(p ProductType) bool {
	switch p {
	case ProductHealth, ProductCasco:
		return true
	default:
		return false
	}
}

// IsValidExtractionStatus checks if an extraction status is valid
func IsValidExtractionStatus(s ExtractionStatus) bool {
	switch s {
	case ExtractionPending, ExtractionParsed, ExtractionError:
		return true
	default:
		return false
	}
}
