package util

import (
	"errors"
	"fmt"
)

// 错误分类，HandleError 按分类映射 HTTP 状态码
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrTokenMissing       = fmt.Errorf("token is missing: %w", ErrUnauthenticated)
	ErrTokenInvalid       = fmt.Errorf("invalid token: %w", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("token has expired: %w", ErrUnauthenticated)
	ErrTokenRevoked       = fmt.Errorf("token has been revoked: %w", ErrUnauthenticated)

	ErrPasswordTooLong = fmt.Errorf("password must be at most 72 bytes: %w", ErrValidation)

	ErrPermissionDenied = fmt.Errorf("permission denied: %w", ErrForbidden)

	ErrAccountNotFound      = fmt.Errorf("account %w", ErrNotFound)
	ErrClassNotFound        = fmt.Errorf("class %w", ErrNotFound)
	ErrSubjectNotFound      = fmt.Errorf("subject %w", ErrNotFound)
	ErrStudentNotFound      = fmt.Errorf("student %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrMaterialNotFound     = fmt.Errorf("learning material %w", ErrNotFound)
	ErrFileNotFound         = fmt.Errorf("file %w", ErrNotFound)

	ErrEmailRegistered   = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrUsernameTaken     = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrClassInUse        = fmt.Errorf("class still has subjects or students: %w", ErrConflict)
	ErrSubjectInUse      = fmt.Errorf("subject still has learning materials: %w", ErrConflict)
	ErrStudentHasAccount = fmt.Errorf("student already has an account: %w", ErrConflict)
	ErrTeacherInUse      = fmt.Errorf("teacher still owns classes or subjects: %w", ErrConflict)

	ErrInvalidRole        = fmt.Errorf("invalid role: %w", ErrValidation)
	ErrInvalidGradeLetter = fmt.Errorf("grade must be one of A, B, C, D, E: %w", ErrValidation)
	ErrNoGrades           = fmt.Errorf("student has no grades: %w", ErrValidation)
	ErrInvalidFileType    = fmt.Errorf("invalid file format: %w", ErrValidation)
	ErrFileTooLarge       = fmt.Errorf("file too large: %w", ErrValidation)
	ErrNoFile             = fmt.Errorf("no file part: %w", ErrValidation)
)

// Validationf 构造一个校验错误
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}
