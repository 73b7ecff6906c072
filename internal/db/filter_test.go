package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterEq(t *testing.T) {
	filter := NewFilter().Eq("read", false).Build()

	assert.Equal(t, bson.M{"read": false}, filter)
}

func TestFilterAllAndSizeCompose(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	filter := NewFilter().
		All("members", []primitive.ObjectID{a, b}).
		Size("members", 2).
		Build()

	cond, ok := filter["members"].(bson.M)
	require.True(t, ok, "All and Size must land on the same field condition")
	assert.Equal(t, []primitive.ObjectID{a, b}, cond["$all"])
	assert.Equal(t, 2, cond["$size"])
}

func TestFilterObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	filter := NewFilter().ObjectID("chat_id", id.Hex()).Build()

	assert.Equal(t, id, filter["chat_id"])
}

func TestFilterObjectIDIgnoresMalformedHex(t *testing.T) {
	filter := NewFilter().ObjectID("chat_id", "garbage").Build()

	_, present := filter["chat_id"]
	assert.False(t, present)
}

func TestFilterOr(t *testing.T) {
	filter := NewFilter().Or(bson.M{"a": 1}, bson.M{"b": 2}).Build()

	assert.Equal(t, []bson.M{{"a": 1}, {"b": 2}}, filter["$or"])
}

func TestEmptyMatchesAll(t *testing.T) {
	assert.Equal(t, bson.M{}, Empty())
}
