// Package query translates request-level listing filters into store
// queries. Every listing endpoint shares this contract: filters
// combine conjunctively, free-text fields match as case-insensitive
// substrings, and sorting defaults to newest-first.
package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Builder struct {
	filter bson.M
}

func New() *Builder {
	return &Builder{filter: bson.M{}}
}

// Equal adds an exact-match condition. Empty values are skipped so
// absent filters never constrain the query.
func (b *Builder) Equal(field, value string) *Builder {
	if value != "" {
		b.filter[field] = value
	}
	return b
}

func (b *Builder) EqualBool(field string, value bool) *Builder {
	b.filter[field] = value
	return b
}

// Substring adds a case-insensitive substring condition. The input is
// escaped before it reaches the store, so user text cannot smuggle in
// regex metacharacters.
func (b *Builder) Substring(field, value string) *Builder {
	if value != "" {
		b.filter[field] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
	}
	return b
}

// SearchAny matches the value as a substring of any of the given
// fields.
func (b *Builder) SearchAny(value string, fields ...string) *Builder {
	if value == "" || len(fields) == 0 {
		return b
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
	clauses := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, bson.M{field: pattern})
	}
	b.filter["$or"] = clauses
	return b
}

// Range adds a numeric range condition; either bound is optional.
func (b *Builder) Range(field string, min, max *float64) *Builder {
	if min == nil && max == nil {
		return b
	}
	bounds := bson.M{}
	if min != nil {
		bounds["$gte"] = *min
	}
	if max != nil {
		bounds["$lte"] = *max
	}
	b.filter[field] = bounds
	return b
}

func (b *Builder) Build() bson.M {
	return b.filter
}

// SortNewestFirst is the default listing order.
func SortNewestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}

// SortOldestFirst is used for conversation threads, which read in
// chronological order.
func SortOldestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: 1}}
}
