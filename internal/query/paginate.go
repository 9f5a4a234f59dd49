package query

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"alcyxob/gym-manager/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Expand inlines a referenced document in place of its id.
// Field holds the id, From is the collection to look in, Select the fields to
// keep from the referenced document (all when empty) and As the output field
// (Field when empty).
type Expand struct {
	Field  string
	From   string
	Select []string
	As     string
}

// PageRequest describes one window over a sorted result set. Page is 1-based.
// Sort is a comma separated list of fields, each optionally prefixed with "-"
// for descending order.
type PageRequest struct {
	Page   int
	Limit  int
	Sort   string
	Expand []Expand
}

// Skip is the number of records before the window.
func (r PageRequest) Skip() int64 {
	return int64(r.Page-1) * int64(r.Limit)
}

// Pagination is the metadata returned with every list response.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPagination computes the metadata for page/limit over total matches.
func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page) < pages,
		HasPrev: page > 1,
	}
}

// Page is one window of records plus its metadata.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

var sortField = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ParsePageRequest reads page, limit and sort from a query string. Missing
// values fall back to defaults. Non-numeric values, values below 1, a window
// offset that does not fit in int64 and sort keys that are not plain field
// paths are rejected.
func ParsePageRequest(values url.Values, defaultSort string) (PageRequest, error) {
	req := PageRequest{Page: DefaultPage, Limit: DefaultLimit, Sort: defaultSort}
	var fields []apperr.FieldError

	pageOK := parsePositive(values, "page", &req.Page, &fields)
	limitOK := parsePositive(values, "limit", &req.Limit, &fields)
	if pageOK && limitOK && int64(req.Page-1) > math.MaxInt64/int64(req.Limit) {
		fields = append(fields, apperr.FieldError{Field: "page", Message: "is out of range"})
	}

	if s := strings.TrimSpace(values.Get("sort")); s != "" {
		if !validSort(s) {
			fields = append(fields, apperr.FieldError{Field: "sort", Message: "must be a comma separated list of field names"})
		}
		req.Sort = s
	}

	if len(fields) > 0 {
		return req, apperr.Validation("", fields...)
	}
	return req, nil
}

func parsePositive(values url.Values, name string, dst *int, fields *[]apperr.FieldError) bool {
	raw := values.Get(name)
	if raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		*fields = append(*fields, apperr.FieldError{Field: name, Message: "must be a number"})
		return false
	case n < 1:
		*fields = append(*fields, apperr.FieldError{Field: name, Message: "must be at least 1"})
		return false
	}
	*dst = n
	return true
}

func validSort(sort string) bool {
	for _, part := range strings.Split(sort, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "-") || strings.HasPrefix(part, "+") {
			part = part[1:]
		}
		if part == "" {
			continue
		}
		if !sortField.MatchString(part) || strings.Contains(part, "..") || strings.HasSuffix(part, ".") {
			return false
		}
	}
	return true
}

// BuildSort turns "-createdAt,lastName" into an ordered sort document.
// _id is appended as a tiebreaker so windows never overlap.
func BuildSort(sort string) bson.D {
	d := bson.D{}
	hasID := false
	for _, part := range strings.Split(sort, ",") {
		part = strings.TrimSpace(part)
		dir := 1
		if strings.HasPrefix(part, "-") {
			dir = -1
			part = part[1:]
		} else if strings.HasPrefix(part, "+") {
			part = part[1:]
		}
		if part == "" {
			continue
		}
		if part == "_id" {
			hasID = true
		}
		d = append(d, bson.E{Key: part, Value: dir})
	}
	if !hasID {
		d = append(d, bson.E{Key: "_id", Value: 1})
	}
	return d
}

// BuildPipeline returns the aggregation that produces one window of filter's
// matches, with each expansion inlined.
func BuildPipeline(filter bson.M, req PageRequest) mongo.Pipeline {
	if filter == nil {
		filter = bson.M{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: BuildSort(req.Sort)}},
		{{Key: "$skip", Value: req.Skip()}},
		{{Key: "$limit", Value: int64(req.Limit)}},
	}
	for _, e := range req.Expand {
		pipeline = append(pipeline, LookupStages(e)...)
	}
	return pipeline
}

// LookupStages builds the $lookup/$unwind pair for one expansion.
func LookupStages(e Expand) []bson.D {
	as := e.As
	if as == "" {
		as = e.Field
	}
	sub := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$_id", "$$refId"}},
		}}}}},
	}
	if len(e.Select) > 0 {
		proj := bson.D{}
		for _, f := range e.Select {
			proj = append(proj, bson.E{Key: f, Value: 1})
		}
		sub = append(sub, bson.D{{Key: "$project", Value: proj}})
	}
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: e.From},
			{Key: "let", Value: bson.D{{Key: "refId", Value: "$" + e.Field}}},
			{Key: "pipeline", Value: sub},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// Collection is the part of *mongo.Collection the paginator needs.
type Collection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

// Paginate counts filter's matches and fetches the requested window, decoding
// each record into T. Store errors are returned unchanged.
func Paginate[T any](ctx context.Context, coll Collection, filter bson.M, req PageRequest) (*Page[T], error) {
	if filter == nil {
		filter = bson.M{}
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Aggregate(ctx, BuildPipeline(filter, req))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	data := make([]T, 0)
	if err := cursor.All(ctx, &data); err != nil {
		return nil, err
	}

	return &Page[T]{Data: data, Pagination: NewPagination(req.Page, req.Limit, total)}, nil
}
