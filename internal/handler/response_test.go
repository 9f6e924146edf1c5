package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/bronte-blog/internal/domain"
	"github.com/prn-tf/bronte-blog/internal/identity"
	"github.com/prn-tf/bronte-blog/internal/service"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "user not found", err: domain.ErrUserNotFound, status: http.StatusNotFound},
		{name: "blog not found", err: domain.ErrBlogNotFound, status: http.StatusNotFound},
		{name: "email taken", err: service.ErrEmailTaken, status: http.StatusBadRequest},
		{name: "duplicate blog", err: domain.ErrBlogAlreadyExists, status: http.StatusBadRequest},
		{name: "email not registered", err: service.ErrEmailNotRegistered, status: http.StatusBadRequest},
		{name: "bad credentials", err: service.ErrBadCredentials, status: http.StatusBadRequest},
		{name: "federated account", err: service.ErrFederatedAccount, status: http.StatusBadRequest},
		{name: "link expired", err: service.ErrLinkExpired, status: http.StatusUnauthorized},
		{name: "unverified identity email", err: identity.ErrEmailNotVerified, status: http.StatusUnauthorized},
		{name: "body too short", err: service.ErrBodyTooShort, status: http.StatusUnprocessableEntity},
		{name: "photo too large", err: service.ErrPhotoTooLarge, status: http.StatusUnprocessableEntity},
		{name: "blank contact message", err: service.ErrMessageRequired, status: http.StatusUnprocessableEntity},
		{name: "wrapped internal", err: fmt.Errorf("%w: boom", service.ErrInternalError), status: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("anything else"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.status, statusForError(tt.err))
		})
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int64
		wantErr  bool
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "7", expected: []int64{7}},
		{name: "multiple", input: "1,2,3", expected: []int64{1, 2, 3}},
		{name: "spaces tolerated", input: " 1 , 2 ", expected: []int64{1, 2}},
		{name: "not numeric", input: "1,x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := parseIDList(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, ids)
		})
	}
}
