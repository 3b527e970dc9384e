// Package repository holds the SQL behind every store the services use.
//
// Each repository takes the shared pgx pool and returns model types. A
// missing row is reported with sqlerr.NotFound so callers can test for the
// model's ErrNotFound sentinel and the global error handler can still name
// the entity.
package repository
