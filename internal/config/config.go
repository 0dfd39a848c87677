package config

import "os"

// Config holds the Google Cloud settings shared by the CLI and the API.
type Config struct {
	// ProjectID is the GCP project hosting the BigQuery dataset.
	ProjectID string

	// DatasetID is the BigQuery dataset with the portfolio tables.
	DatasetID string

	// Bucket is the GCS bucket used to archive imported workbooks.
	// Optional; archiving is skipped when empty.
	Bucket string
}

// FromEnv reads configuration from the environment. Flags in the binaries
// can override individual fields.
func FromEnv() Config {
	cfg := Config{
		ProjectID: os.Getenv("GCP_PROJECT"),
		DatasetID: os.Getenv("BQ_DATASET"),
		Bucket:    os.Getenv("GCS_BUCKET"),
	}
	if cfg.DatasetID == "" {
		cfg.DatasetID = "portfolio"
	}
	return cfg
}
