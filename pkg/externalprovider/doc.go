// Package externalprovider implements sign-in with Google.
//
// GET /auth/google redirects to the consent screen with a random state that
// is also stored in a short-lived cookie. GET /auth/google/callback checks
// the state, exchanges the code with golang.org/x/oauth2, reads the userinfo
// endpoint and finds or creates the account by email. New accounts follow
// the same bootstrap rule as password registration. The browser is sent
// back to FRONTEND_URL with ?token=... or ?error=....
package externalprovider
