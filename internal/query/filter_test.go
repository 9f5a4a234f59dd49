package query

import (
	"net/url"
	"testing"
	"time"

	"alcyxob/gym-manager/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter_DropsEmptyAndAll(t *testing.T) {
	filter := BuildFilter(map[string]string{
		"status":         "active",
		"membershipType": "all",
		"fitnessGoal":    "",
		"gender":         "   ",
		"type":           "ALL",
	})
	assert.Equal(t, bson.M{"status": "active"}, filter)
}

func TestBuildFilter_NeverKeepsDroppedValues(t *testing.T) {
	dropped := []string{"", "all", "All", " all "}
	for _, v := range dropped {
		filter := BuildFilter(map[string]string{"a": v, "bFrom": v, "cTo": v})
		assert.Empty(t, filter, "value %q", v)
	}
}

func TestBuildFilter_DateRange(t *testing.T) {
	filter := BuildFilter(map[string]string{
		"createdAtFrom": "2026-01-01",
		"createdAtTo":   "2026-01-31",
		"paidAtFrom":    "2026-02-01T10:00:00Z",
	})

	created, ok := filter["createdAt"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), created["$gte"])
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC), created["$lte"])

	paid := filter["paidAt"].(bson.M)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), paid["$gte"])
	assert.NotContains(t, paid, "$lte")
}

func TestBuildFilter_BadDateIsDropped(t *testing.T) {
	filter := BuildFilter(map[string]string{"createdAtFrom": "yesterday"})
	assert.Empty(t, filter)
}

func TestBuildFilter_BareSuffixIsEquality(t *testing.T) {
	filter := BuildFilter(map[string]string{"To": "x", "From": "y"})
	assert.Equal(t, bson.M{"To": "x", "From": "y"}, filter)
}

func TestAddSearch(t *testing.T) {
	base := bson.M{"status": "active"}
	got := AddSearch(base, "a.n", "firstName", "email")

	assert.Equal(t, "active", got["status"])
	or, ok := got["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"firstName": primitive.Regex{Pattern: `a\.n`, Options: "i"}}, or[0])
	assert.NotContains(t, base, "$or", "input filter must not be modified")
}

func TestAddSearch_EmptyTerm(t *testing.T) {
	base := bson.M{"status": "active"}
	assert.Equal(t, base, AddSearch(base, "  ", "firstName"))
}

func TestAddSearch_KeepsExistingOr(t *testing.T) {
	base := bson.M{"$or": bson.A{bson.M{"status": "active"}, bson.M{"status": "expired"}}}
	got := AddSearch(base, "ann", "firstName")

	assert.NotContains(t, got, "$or")
	and, ok := got["$and"].(bson.A)
	require.True(t, ok)
	assert.Len(t, and, 2)
}

func TestParamsFromQuery(t *testing.T) {
	values := url.Values{"status": {"active"}, "secret": {"x"}, "type": {""}}
	assert.Equal(t, map[string]string{"status": "active"}, ParamsFromQuery(values, "status", "type"))
}

func TestCoerceObjectIDs(t *testing.T) {
	id := primitive.NewObjectID()
	filter := bson.M{"client": id.Hex(), "status": "completed"}
	require.NoError(t, CoerceObjectIDs(filter, "client", "trainer"))
	assert.Equal(t, id, filter["client"])

	err := CoerceObjectIDs(bson.M{"client": "nope"}, "client")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
