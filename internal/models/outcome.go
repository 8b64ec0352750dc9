package models

// FailureReason classifies a failed resource-owner authentication attempt.
type FailureReason string

const (
	ReasonUnknownUser    FailureReason = "unknown_user"
	ReasonBadCredentials FailureReason = "bad_credentials"
)

// AuthenticationOutcome is the result of exactly one resource-owner
// authentication attempt. Client-credential failures never produce an
// outcome — lockout applies only to end users.
type AuthenticationOutcome struct {
	Success           bool
	Principal         *DirectoryUser // set on success
	AttemptedUsername string         // set on failure
	Reason            FailureReason  // set on failure
	ClientID          string         // client application that carried the attempt
}

// SuccessOutcome builds a success outcome for the given principal.
func SuccessOutcome(principal *DirectoryUser, clientID string) AuthenticationOutcome {
	return AuthenticationOutcome{
		Success:   true,
		Principal: principal,
		ClientID:  clientID,
	}
}

// FailureOutcome builds a failure outcome for the attempted username.
func FailureOutcome(username string, reason FailureReason, clientID string) AuthenticationOutcome {
	return AuthenticationOutcome{
		AttemptedUsername: username,
		Reason:            reason,
		ClientID:          clientID,
	}
}

// Username returns the username the outcome refers to.
func (o AuthenticationOutcome) Username() string {
	if o.Success && o.Principal != nil {
		return o.Principal.Username
	}
	return o.AttemptedUsername
}
