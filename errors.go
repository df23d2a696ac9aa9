package gatehouse

import "errors"

var (
	// ErrUserExists is returned by [Service.Register] when the email is
	// already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a directory lookup targets an email,
	// id, session, or reset token that matches no user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidField is returned by [UserDirectory.Update] implementations
	// when a field name is not part of the user schema.
	ErrInvalidField = errors.New("invalid user field")
	// ErrResetTokenExpired is returned by [Service.ResetPassword] when reset
	// tokens carry a TTL and the presented token has aged out.
	ErrResetTokenExpired = errors.New("reset token expired")
	// ErrServiceNotReady is returned when a Service is used without the
	// wiring [Builder.Build] enforces.
	ErrServiceNotReady = errors.New("service not ready")
	// ErrBuilderUsed is returned by [Builder.Build] on reuse.
	ErrBuilderUsed = errors.New("builder already used")
)
