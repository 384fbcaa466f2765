package mongostore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"go-market-backend/apperr"
	"go-market-backend/repository"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestProductQuery_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, productQuery(repository.ProductFilter{}))
}

func TestProductQuery_AllFilters(t *testing.T) {
	paid := false
	q := productQuery(repository.ProductFilter{
		Category: "design",
		Tags:     []string{"ui", "icons"},
		Search:   "c++ (beta)",
		IsPaid:   &paid,
	})

	assert.Equal(t, "design", q["category"])
	assert.Equal(t, false, q["isPaid"])
	assert.Equal(t, bson.M{"$in": []string{"ui", "icons"}}, q["tags"])

	or, ok := q["$or"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, or, 3)
	re := bson.M{"$regex": `c\+\+ \(beta\)`, "$options": "i"}
	assert.Equal(t, bson.M{"title": re}, or[0])
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), repository.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateError(dup), repository.ErrDuplicate)

	err := translateError(fmt.Errorf("ping: %w", context.DeadlineExceeded))
	assert.Equal(t, repository.MsgTimeout, apperr.PublicMessage(err))

	err = translateError(mongo.CommandError{Code: 18, Message: "Authentication failed."})
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Equal(t, repository.MsgAuthFailed, apperr.PublicMessage(err))

	err = translateError(fmt.Errorf("dial: %w", &net.DNSError{Err: "lookup failed", Name: "db.internal"}))
	assert.Equal(t, repository.MsgHostNotFound, apperr.PublicMessage(err))

	err = translateError(errors.New("getaddrinfo ENOTFOUND cluster0"))
	assert.Equal(t, repository.MsgHostNotFound, apperr.PublicMessage(err))
}
