package principal

import "errors"

var (
	ErrNoToken                 = errors.New("principal: no token")
	ErrInvalidToken            = errors.New("principal: invalid token")
	ErrExpiredToken            = errors.New("principal: token is expired")
	ErrInvalidSignature        = errors.New("principal: invalid signature")
	ErrUnexpectedSigningMethod = errors.New("principal: unexpected signing method")
	ErrInvalidClaims           = errors.New("principal: invalid claims")
	ErrMissingSigningKey       = errors.New("principal: missing signing key")
	ErrAnonymous               = errors.New("principal: anonymous principal cannot be issued")
	ErrKeyDerivation           = errors.New("principal: key derivation failed")
)
