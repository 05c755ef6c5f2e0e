// Package errors provides structured error handling with error codes for protus.
//
// Services return *Error values carrying a typed ErrorCode; handlers turn
// them into a status code with MapErrorCodeToHTTPStatus and render
// {"error": message, "code": code}. Errors that are not *Error are treated
// as ErrCodeInternal.
//
// Creating errors:
//
//	err := errors.New(errors.ErrCodeInvalidOTP, "Invalid OTP")
//	err := errors.Wrap(dbErr, errors.ErrCodeInternal, "failed to load user")
//	err := errors.NotFound("user", userID)
//
// Inspecting errors:
//
//	if errors.IsCode(err, errors.ErrCodePendingApproval) {
//		// ...
//	}
//	status := errors.MapErrorCodeToHTTPStatus(errors.GetCode(err))
package errors
