package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{Internal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusCode(New(c.kind, "boom")))
	}
}

func TestUntaggedErrorsStayGeneric(t *testing.T) {
	err := errors.New("connection refused to mongodb://internal-host:27017")

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "Something went wrong", Message(err))
}

func TestWrappedErrorKeepsKindAndCause(t *testing.T) {
	cause := errors.New("write conflict")
	err := Wrap(Conflict, "Quantity of product in stock less than quantity in order", cause)

	assert.Equal(t, Conflict, KindOf(err))
	assert.Equal(t, "Quantity of product in stock less than quantity in order", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "write conflict")
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(NotFound, "Product with this ID was not found")
	outer := fmt.Errorf("creating order: %w", inner)

	assert.Equal(t, NotFound, KindOf(outer))
	assert.Equal(t, "Product with this ID was not found", Message(outer))
	assert.Equal(t, http.StatusNotFound, StatusCode(outer))
}
