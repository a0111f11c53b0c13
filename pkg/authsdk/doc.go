/*
Package authsdk provides a client SDK for the Gatekeeper authentication service.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: unauthenticated operations (login, registration, password reset, health)
  - Session: operations on behalf of a signed-in user

Create an SDKClient and sign in:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, challenge, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if challenge != nil {
		// The account has a second factor.
		session, err = client.CompleteTwoFactor(ctx, challenge.Ticket, "totp", code)
	}

# Principal cache

Session.Me caches the principal. The cache starts empty for every new
Session, is cleared by Logout, and is dropped whenever the server answers
401, so a revoked session is noticed on the next call.

# Optimistic feature flags

Session.SetFeatureFlag updates the local flag view before the request and
restores it when the server refuses. A FEATURE_FLAG_CONFLICT response
carries the value the flag really holds, and the local view adopts it.

# Errors

Every failure the server reports comes back as an *APIError. The package
level values (ErrInvalidCredentials, ErrRateLimitExceeded, ...) match by
code:

	if errors.Is(err, authsdk.ErrRateLimitExceeded) {
		// back off
	}
*/
package authsdk
