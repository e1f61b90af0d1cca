package repositories

import (
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// containsRegex builds a case-insensitive substring match, escaping user
// input so it cannot inject regex syntax.
func containsRegex(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func pageOpts(page, limit int) (skip, lim int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return int64((page - 1) * limit), int64(limit)
}

func byID(id primitive.ObjectID) bson.M { return bson.M{"_id": id} }
