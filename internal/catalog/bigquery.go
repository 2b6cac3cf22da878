package catalog

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/jonmartinstorm/repobackupern/internal/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type BigQueryWriter struct {
	Client  *bigquery.Client
	Dataset string
	Table   string
}

// NewBigQueryWriter lager klienten og sørger for at sesjonstabellen finnes,
// med skjema utledet fra SessionRecord.
func NewBigQueryWriter(ctx context.Context, cfg config.Config) (*BigQueryWriter, error) {
	var opts []option.ClientOption
	if cfg.BQCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.BQCredentials))
	}

	client, err := bigquery.NewClient(ctx, cfg.BQProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("kan ikke opprette BigQuery-klient: %w", err)
	}

	if err := ensureTableExists(ctx, client, cfg.BQDataset, cfg.BQTable, SessionRecord{}); err != nil {
		return nil, err
	}

	return &BigQueryWriter{
		Client:  client,
		Dataset: cfg.BQDataset,
		Table:   cfg.BQTable,
	}, nil
}

func (w *BigQueryWriter) RecordSession(ctx context.Context, rec SessionRecord) error {
	inserter := w.Client.Dataset(w.Dataset).Table(w.Table).Inserter()
	if err := inserter.Put(ctx, []SessionRecord{rec}); err != nil {
		return fmt.Errorf("katalograd insert feilet: %w", err)
	}
	return nil
}

func ensureTableExists(ctx context.Context, client *bigquery.Client, dataset, table string, exampleStruct any) error {
	tbl := client.Dataset(dataset).Table(table)
	_, err := tbl.Metadata(ctx)
	if err == nil {
		return nil // tabellen finnes
	}

	var gErr *googleapi.Error
	if !errors.As(err, &gErr) || gErr.Code != 404 {
		return fmt.Errorf("feil ved henting av tabell-metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(exampleStruct)
	if err != nil {
		return fmt.Errorf("klarte ikke å generere schema for %s: %w", table, err)
	}

	if err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("klarte ikke å opprette tabell %s: %w", table, err)
	}
	return nil
}
