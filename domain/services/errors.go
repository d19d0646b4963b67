package services

import (
	"fmt"

	"screw-inspection/pkg/apperrors"
)

var (
	ErrNoActiveEngine     = fmt.Errorf("%w: no active inference engine", apperrors.ErrDetectorUnavailable)
	ErrEngineLoadFailed   = fmt.Errorf("%w: active engine failed to load", apperrors.ErrDetectorUnavailable)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)
	ErrUserInactive       = fmt.Errorf("%w: user is deactivated", apperrors.ErrForbidden)
	ErrRegistrationClosed = fmt.Errorf("%w: public registration is disabled", apperrors.ErrForbidden)
)
