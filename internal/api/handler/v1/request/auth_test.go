package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	}

	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(r *RegisterRequest) {},
		},
		{
			name:    "name too short",
			mutate:  func(r *RegisterRequest) { r.Name = "Al" },
			wantErr: true,
		},
		{
			name:    "missing email",
			mutate:  func(r *RegisterRequest) { r.Email = "" },
			wantErr: true,
		},
		{
			name:    "malformed email",
			mutate:  func(r *RegisterRequest) { r.Email = "not-an-email" },
			wantErr: true,
		},
		{
			name:    "password too short",
			mutate:  func(r *RegisterRequest) { r.Password = "ab1" },
			wantErr: true,
		},
		{
			name:    "password without digits",
			mutate:  func(r *RegisterRequest) { r.Password = "letters" },
			wantErr: true,
		},
		{
			name:    "password without letters",
			mutate:  func(r *RegisterRequest) { r.Password = "12345678" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "alice@example.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "alice@example.com", Password: ""}).Validate())
}
