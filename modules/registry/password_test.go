package registry

import (
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "password123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!#$%^&*()",
		},
		{
			name:     "unicode password",
			password: "密码123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			if hash == "" || hash == tt.password {
				t.Errorf("Hash() = %q, want a non-empty hash distinct from the password", hash)
			}

			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() = false for correct password")
			}
			if hasher.Verify(tt.password+"1", hash) {
				t.Error("Verify() = true for wrong password")
			}
		})
	}
}

func TestBcryptGate(t *testing.T) {
	hasher := NewPasswordHasher()
	hash, err := hasher.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	gate := BcryptGate(hash)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct password", password: "hunter2", want: true},
		{name: "wrong password", password: "swordfish", want: false},
		{name: "empty password", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate(tt.password); got != tt.want {
				t.Errorf("gate(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
