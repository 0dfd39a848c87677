// Command migrate creates the BigQuery dataset and tables the tracker
// writes to. It is idempotent: existing dataset and tables are left
// untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

var (
	projectID = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (required)")
	datasetID = flag.String("dataset", "portfolio", "BigQuery dataset ID")
	location  = flag.String("location", "EU", "Dataset location")
)

func main() {
	flag.Parse()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required (or set GCP_PROJECT).")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	dataset := client.Dataset(*datasetID)
	if err := ensureDataset(ctx, dataset); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	for name, schema := range tableSchemas() {
		if err := ensureTable(ctx, dataset, name, schema); err != nil {
			log.Fatalf("Failed to ensure table %s: %v", name, err)
		}
	}

	log.Println("Migration complete. Dataset is up to date.")
}

func ensureDataset(ctx context.Context, dataset *bigquery.Dataset) error {
	err := dataset.Create(ctx, &bigquery.DatasetMetadata{Location: *location})
	if alreadyExists(err) {
		log.Printf("  [SKIP] dataset %s (already exists)", dataset.DatasetID)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("  [OK]   dataset %s created", dataset.DatasetID)
	return nil
}

func ensureTable(ctx context.Context, dataset *bigquery.Dataset, name string, schema bigquery.Schema) error {
	err := dataset.Table(name).Create(ctx, &bigquery.TableMetadata{Schema: schema})
	if alreadyExists(err) {
		log.Printf("  [SKIP] table %s (already exists)", name)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("  [OK]   table %s created", name)
	return nil
}

func alreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

func tableSchemas() map[string]bigquery.Schema {
	return map[string]bigquery.Schema{
		"assets": {
			{Name: "symbol", Type: bigquery.StringFieldType, Required: true},
			{Name: "name", Type: bigquery.StringFieldType},
			{Name: "amount", Type: bigquery.NumericFieldType, Required: true},
		},
		"transactions": {
			{Name: "transaction_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "user_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "date", Type: bigquery.TimestampFieldType, Required: true},
			{Name: "type", Type: bigquery.StringFieldType, Required: true},
			{Name: "amount", Type: bigquery.NumericFieldType, Required: true},
			{Name: "description", Type: bigquery.StringFieldType},
			{Name: "created_ts", Type: bigquery.TimestampFieldType, Required: true},
		},
		"user_portfolio_history": {
			{Name: "entry_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "date", Type: bigquery.DateFieldType, Required: true},
			{Name: "user_id", Type: bigquery.StringFieldType, Required: true},
			{Name: "value", Type: bigquery.NumericFieldType, Required: true},
			{Name: "invested", Type: bigquery.NumericFieldType, Required: true},
		},
		"profiles": {
			{Name: "id", Type: bigquery.StringFieldType, Required: true},
			{Name: "email", Type: bigquery.StringFieldType, Required: true},
			{Name: "full_name", Type: bigquery.StringFieldType, Required: true},
			{Name: "role", Type: bigquery.StringFieldType, Required: true},
		},
	}
}
