package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOfCoversEveryKind(t *testing.T) {
	cases := map[Kind]int{
		Validation: http.StatusBadRequest,
		Auth:       http.StatusUnauthorized,
		Forbidden:  http.StatusForbidden,
		NotFound:   http.StatusNotFound,
		Conflict:   http.StatusConflict,
		Internal:   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusOf(New(kind, "x")), "kind %d", kind)
	}
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	err := errors.New("mongo: socket closed")

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	// The cause never reaches the client.
	assert.Equal(t, InternalMessage, MessageOf(err))
}

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("duplicate key error collection: saydalia.users")
	err := Wrap(Conflict, "البريد الإلكتروني مسجل مسبقاً", cause)

	assert.Equal(t, "البريد الإلكتروني مسجل مسبقاً", MessageOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", New(NotFound, "لم يتم العثور على الطلب"))

	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "لم يتم العثور على الطلب", MessageOf(err))
}
