// Package service holds the operations behind each endpoint.
//
// Services depend on narrow store interfaces rather than concrete
// repositories, so the HTTP layer can be exercised against in-memory stores.
package service
