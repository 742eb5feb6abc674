package service

import (
	"errors"
	"fmt"
)

// ErrLoginFailed is the root of every ordinary login failure.
// Callers check it with errors.Is and show a generic retry message.
var ErrLoginFailed = errors.New("login failed")

var (
	// ErrInvalidCredentials means the input was empty or the verifier rejected it.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrLoginFailed)
	// ErrStoreUnavailable means the session store or role lookup did not answer in time or failed.
	ErrStoreUnavailable = fmt.Errorf("%w: session store unavailable", ErrLoginFailed)
	// ErrVerifierUnavailable means the credential verifier itself failed.
	ErrVerifierUnavailable = fmt.Errorf("%w: credential verifier unavailable", ErrLoginFailed)
)

// ErrNoAuthContext is the panic value of MustAuthContext when no auth context was provisioned.
var ErrNoAuthContext = errors.New("auth context used outside its provisioning scope")
