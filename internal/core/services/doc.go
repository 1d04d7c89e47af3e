// Package services contains the application core: retrieval with a
// confidence gate, grounded answer generation, and the pipeline
// orchestrator that ties ingest, indexing, querying and audit
// together. Services depend only on the driven ports, never on
// concrete adapters.
package services
