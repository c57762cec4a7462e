package users

import (
	"errors"
	"testing"

	"mercato/apperr"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapUserWriteErrDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error collection: shopdb.users index: unique_email"}},
	}

	err := mapUserWriteErr(dup, "User was not created")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, "User with this username, email or phone already exists", apperr.Message(err))
}

func TestMapUserWriteErrOtherErrorsStayInternal(t *testing.T) {
	cause := errors.New("socket was unexpectedly closed")

	err := mapUserWriteErr(cause, "User was not created")
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Equal(t, "User was not created", apperr.Message(err))
	assert.ErrorIs(t, err, cause)
}
