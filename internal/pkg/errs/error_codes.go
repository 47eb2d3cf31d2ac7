/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific business or system failures both inside the
server and in responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the per-IP request rate was exceeded.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Conversation and Message Business Logic Errors
const (
	// ErrConversationNotFound indicates the requested conversation does not exist.
	ErrConversationNotFound = 2101

	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = 2201

	// ErrEmptyContent indicates a message was sent with no content.
	ErrEmptyContent = 2202

	// ErrMessageContentTooLong indicates message content exceeded the length limit.
	ErrMessageContentTooLong = 2203

	// ErrAvatarTypeInvalid indicates an avatar upload with a disallowed file type.
	ErrAvatarTypeInvalid = 2301

	// ErrAvatarTooLarge indicates an avatar upload exceeding the size limit.
	ErrAvatarTooLarge = 2302
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a phone number / password mismatch at login.
	ErrInvalidCredentials = 3002

	// ErrUserNotFound indicates the referenced user account does not exist.
	ErrUserNotFound = 3101

	// ErrUserAlreadyExists indicates the phone number is already registered.
	ErrUserAlreadyExists = 3102

	// ErrInvalidPhoneNumber indicates a malformed phone number at registration.
	ErrInvalidPhoneNumber = 3103

	// ErrInvalidName indicates a missing or overlong display name.
	ErrInvalidName = 3104

	// ErrInvalidPassword indicates a password outside the allowed length range.
	ErrInvalidPassword = 3105
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates a transient persistence failure; callers
	// should back off and retry the whole logical operation.
	ErrStoreUnavailable = 5001

	// ErrFileStorageFailed indicates the object storage backend rejected a request.
	ErrFileStorageFailed = 5002
)
