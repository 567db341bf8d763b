package auth

import "go.uber.org/fx"

// Module provides credential primitives via fx.
var Module = fx.Provide(newPasswordHasher)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}
