// Package query turns list-endpoint parameters into store predicates and
// runs counted, sorted, windowed fetches over them.
package query

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	fromSuffix = "From"
	toSuffix   = "To"
)

// BuildFilter converts flat parameters into a predicate.
// Empty and "all" values are dropped, "<field>From"/"<field>To" become a
// $gte/$lte date range on <field>, and everything else is an equality match.
func BuildFilter(params map[string]string) bson.M {
	filter := bson.M{}
	for key, raw := range params {
		value := strings.TrimSpace(raw)
		if value == "" || strings.EqualFold(value, "all") {
			continue
		}

		switch {
		case hasSuffix(key, fromSuffix):
			if t, ok := parseDate(value, false); ok {
				addRange(filter, strings.TrimSuffix(key, fromSuffix), "$gte", t)
			}
		case hasSuffix(key, toSuffix):
			if t, ok := parseDate(value, true); ok {
				addRange(filter, strings.TrimSuffix(key, toSuffix), "$lte", t)
			}
		default:
			filter[key] = value
		}
	}
	return filter
}

func hasSuffix(key, suffix string) bool {
	return len(key) > len(suffix) && strings.HasSuffix(key, suffix)
}

func addRange(filter bson.M, field, op string, t time.Time) {
	r, ok := filter[field].(bson.M)
	if !ok {
		r = bson.M{}
		filter[field] = r
	}
	r[op] = t
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates. A plain
// date used as an upper bound covers the whole day.
func parseDate(value string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, true
}

// AddSearch ORs a case-insensitive substring match for term across fields into
// filter. An $or already present is kept and both are ANDed together.
func AddSearch(filter bson.M, term string, fields ...string) bson.M {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return filter
	}
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}

	existing, hasOr := out["$or"]
	if !hasOr {
		out["$or"] = or
		return out
	}
	delete(out, "$or")
	and, _ := out["$and"].(bson.A)
	out["$and"] = append(and, bson.M{"$or": existing}, bson.M{"$or": or})
	return out
}

// ParamsFromQuery picks the allowed keys out of a URL query.
func ParamsFromQuery(values url.Values, allowed ...string) map[string]string {
	params := make(map[string]string, len(allowed))
	for _, key := range allowed {
		if v := values.Get(key); v != "" {
			params[key] = v
		}
	}
	return params
}

// CoerceObjectIDs replaces hex string equality values on the given fields with
// ObjectIDs, so that reference fields can be filtered from query strings.
func CoerceObjectIDs(filter bson.M, fields ...string) error {
	for _, f := range fields {
		s, ok := filter[f].(string)
		if !ok {
			continue
		}
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return apperr.Validation("", apperr.FieldError{Field: f, Message: "must be a valid id"})
		}
		filter[f] = id
	}
	return nil
}
