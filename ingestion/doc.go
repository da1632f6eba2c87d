// Package ingestion loads recipe and ingredient records into an index.
//
// The Indexer embeds records in batches on a worker pool, retrying failed
// embedding calls, and writes the embedded entities to storage. Seed files
// are YAML documents with top-level recipes and ingredients lists.
package ingestion
