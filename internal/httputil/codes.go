package httputil

// Machine-readable error codes returned alongside failure messages.
// Clients branch on these instead of parsing the message text.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"

	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeEmailDeliveryFailed = "EMAIL_DELIVERY_FAILED"

	CodeUserNotFound = "USER_NOT_FOUND"
	CodeCodeInvalid  = "VERIFY_CODE_INVALID"
	CodeCodeExpired  = "VERIFY_CODE_EXPIRED"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotVerified        = "ACCOUNT_NOT_VERIFIED"

	CodeMissingAuth       = "MISSING_AUTH"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"

	CodeNotAcceptingMessages = "NOT_ACCEPTING_MESSAGES"
	CodeMessageNotFound      = "MESSAGE_NOT_FOUND"

	CodeInternalError = "INTERNAL_ERROR"
)
