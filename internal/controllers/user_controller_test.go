package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rafaelalberola/lamiradacreativa/internal/services"
)

type fakeIdentity struct {
	status *services.UserStatus
	err    error
	asked  string
}

func (f *fakeIdentity) Upsert(context.Context, string, string, string) (*services.UpsertResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeIdentity) CheckUser(_ context.Context, email string) (*services.UserStatus, error) {
	f.asked = email
	return f.status, f.err
}

func checkUser(t *testing.T, svc *fakeIdentity, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	NewUserController(svc).CheckUserHandler(rr,
		httptest.NewRequest(http.MethodPost, "/api/v1/users/check", strings.NewReader(body)))
	return rr
}

func TestCheckUserHandler(t *testing.T) {
	cases := map[string]struct {
		status *services.UserStatus
		want   string
	}{
		"purchased":     {&services.UserStatus{Exists: true, Purchased: true}, `{"exists":true,"purchased":true}`},
		"not purchased": {&services.UserStatus{Exists: true}, `{"exists":true,"purchased":false}`},
		"unknown":       {&services.UserStatus{}, `{"exists":false}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeIdentity{status: tc.status}
			rr := checkUser(t, svc, `{"email":" ana@b.com "}`)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, tc.want, rr.Body.String())
			assert.Equal(t, "ana@b.com", svc.asked)
		})
	}
}

func TestCheckUserHandler_Validation(t *testing.T) {
	for _, body := range []string{`{`, `{}`, `{"email":"not-an-email"}`} {
		svc := &fakeIdentity{}
		rr := checkUser(t, svc, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Empty(t, svc.asked, body)
	}
}

func TestCheckUserHandler_UpstreamError(t *testing.T) {
	rr := checkUser(t, &fakeIdentity{err: errors.New("auth0 down")}, `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
