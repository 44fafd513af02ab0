package handler

const (
	errInternalServer  = "Internal server error"
	errUsernameTaken   = "Username already taken!"
	errEmailTaken      = "Email already taken!"
	errNotVerified     = "Email not verified"
	errInvalidUsername = "Invalid username"
	errBadPassword     = "Password does not match"
	errInvalidOTP      = "Invalid or expired OTP"
	errUserNotFound    = "User not found"
)
