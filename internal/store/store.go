package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Document is a raw content record. Reads always expose the record id under
// the "id" key as a string.
type Document = map[string]interface{}

// Filter is an equality filter on top-level or nested fields.
type Filter = map[string]interface{}

// Collection names used by the pipeline.
const (
	CollItineraries     = "itineraries"
	CollDestinations    = "destinations"
	CollProperties      = "properties"
	CollAliases         = "destination_aliases"
	CollContentProjects = "content_projects"
	CollDirectives      = "directives"
	CollJobs            = "jobs"
)

// Store is the document-store contract the pipeline consumes. Lookups return
// (nil, nil) when no record matches.
type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	FindMany(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error)
	Create(ctx context.Context, collection string, data Document) (Document, error)
	Update(ctx context.Context, collection string, id string, data Document) (Document, error)
	FindByID(ctx context.Context, collection string, id string) (Document, error)
}

// ErrDuplicateKey is returned by non-mongo Store implementations on a
// uniqueness conflict.
var ErrDuplicateKey = errors.New("duplicate key")

// IsDuplicateKey reports whether a Create failed on a uniqueness index, which
// the slug-conflict recovery paths treat as "someone else created it first".
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || mongo.IsDuplicateKeyError(err)
}

// Str reads a string field from a document, tolerating absence.
func Str(doc Document, key string) string {
	if doc == nil {
		return ""
	}
	s, _ := doc[key].(string)
	return s
}

// ID reads the record id of a document.
func ID(doc Document) string {
	return Str(doc, "id")
}

// Strs reads a string-slice field from a document, tolerating both []string
// and the []interface{} form decoders produce.
func Strs(doc Document, key string) []string {
	if doc == nil {
		return nil
	}
	switch v := doc[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
