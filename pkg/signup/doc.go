// Package signup registers password accounts.
//
// The first account created in an empty store becomes an active Admin. Every
// later account is created with role Pending and status pending and cannot
// log in until an administrator approves it.
//
//	svc := signup.NewSignupService(userService,
//		signup.WithPasswordHasher(hasher),
//		signup.WithRegistrationEnabled(cfg.Auth.RegistrationEnabled),
//	)
//	signup.NewHandle(svc).RegisterRoutes(r)
package signup
