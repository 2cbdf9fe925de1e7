package service

import (
	"context"
	"errors"
	"testing"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/constants"
)

type fakeAuthGateway struct {
	loginResp    *apiclient.AuthResponse
	registerResp *apiclient.AuthResponse
	calls        int
	lastRegister apiclient.RegisterRequest
}

func (f *fakeAuthGateway) Login(_ context.Context, _ apiclient.LoginRequest) (*apiclient.AuthResponse, error) {
	f.calls++
	return f.loginResp, nil
}

func (f *fakeAuthGateway) Register(_ context.Context, req apiclient.RegisterRequest) (*apiclient.AuthResponse, error) {
	f.calls++
	f.lastRegister = req
	return f.registerResp, nil
}

func TestSessionServiceLoginValidation(t *testing.T) {
	svc := NewSessionService(newTestClientStore(t), &fakeAuthGateway{})
	cases := []struct {
		input LoginInput
		field string
		want  string
	}{
		{LoginInput{Email: "", Password: "secret1"}, "email", "Email is required"},
		{LoginInput{Email: "a@b", Password: "secret1"}, "email", "Please enter a valid email address"},
		{LoginInput{Email: "a@b.co", Password: ""}, "password", "Password is required"},
		{LoginInput{Email: "a@b.co", Password: "12345"}, "password", "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		err := svc.ValidateLogin(tc.input)
		var fields FieldErrors
		if !errors.As(err, &fields) {
			t.Fatalf("input %+v: expected field errors, got %v", tc.input, err)
		}
		if fields[tc.field] != tc.want {
			t.Fatalf("input %+v: field %s want %q got %q", tc.input, tc.field, tc.want, fields[tc.field])
		}
	}
	if err := svc.ValidateLogin(LoginInput{Email: "reader@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}
}

func TestSessionServiceRegisterValidation(t *testing.T) {
	svc := NewSessionService(newTestClientStore(t), &fakeAuthGateway{})
	base := RegisterInput{
		Name:            "Reader",
		Email:           "reader@example.com",
		Handphone:       "0812 3456 7890",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	if err := svc.ValidateRegister(base); err != nil {
		t.Fatalf("valid register rejected: %v", err)
	}

	badPhone := base
	badPhone.Handphone = "12345"
	mismatch := base
	mismatch.ConfirmPassword = "secret2"
	blankName := base
	blankName.Name = "   "

	cases := []struct {
		input RegisterInput
		field string
		want  string
	}{
		{badPhone, "handphone", "Please enter a valid phone number"},
		{mismatch, "confirmPassword", "Passwords do not match"},
		{blankName, "name", "Name is required"},
	}
	for _, tc := range cases {
		var fields FieldErrors
		if err := svc.ValidateRegister(tc.input); !errors.As(err, &fields) || fields[tc.field] != tc.want {
			t.Fatalf("field %s want %q got %v", tc.field, tc.want, err)
		}
	}
}

func TestSessionServiceLoginStoresNormalizedToken(t *testing.T) {
	store := newTestClientStore(t)
	gateway := &fakeAuthGateway{loginResp: &apiclient.AuthResponse{
		Success: true,
		Data:    &apiclient.AuthData{Token: "abc.def", User: apiclient.UserSummary{ID: "7", Email: "reader@example.com"}},
	}}
	svc := NewSessionService(store, gateway)

	if _, err := svc.Login(context.Background(), LoginInput{Email: "reader@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	token, err := store.Token()
	if err != nil || token != "Bearer abc.def" {
		t.Fatalf("token want Bearer abc.def got %q err=%v", token, err)
	}
	user, err := svc.CurrentUser()
	if err != nil || user == nil || user.ID != "7" {
		t.Fatalf("unexpected user: %+v err=%v", user, err)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok, _ := store.GetString(constants.StoreKeyToken); ok {
		t.Fatalf("token should be removed on logout")
	}
}

func TestSessionServiceRejectsUnsuccessfulLogin(t *testing.T) {
	gateway := &fakeAuthGateway{loginResp: &apiclient.AuthResponse{Success: false, Message: "nope"}}
	svc := NewSessionService(newTestClientStore(t), gateway)
	if _, err := svc.Login(context.Background(), LoginInput{Email: "reader@example.com", Password: "secret1"}); !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
}

func TestSessionServiceRegisterStripsPhoneSpaces(t *testing.T) {
	gateway := &fakeAuthGateway{registerResp: &apiclient.AuthResponse{
		Success: true,
		Data:    &apiclient.AuthData{Token: "Bearer t1", User: apiclient.UserSummary{ID: "9"}},
	}}
	store := newTestClientStore(t)
	svc := NewSessionService(store, gateway)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Reader", Email: "reader@example.com", Handphone: "0812 3456 7890",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if gateway.lastRegister.Handphone != "081234567890" {
		t.Fatalf("unexpected phone sent: %s", gateway.lastRegister.Handphone)
	}
	if token, _ := store.Token(); token != "Bearer t1" {
		t.Fatalf("register token should not gain a second prefix, got %q", token)
	}
}
