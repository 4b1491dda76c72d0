package errs

import "errors"

var InvalidCredentials = errors.New("invalid credentials")

var (
	InternalError      = errors.New("internal error")
	GeneratingToken    = errors.New("error generating token")
	UserNameTaken      = errors.New("username already taken")
	FailedToCreateUser = errors.New("failed to create user")
	Unauthorized       = errors.New("unauthorized")
	Forbidden          = errors.New("forbidden")
)
