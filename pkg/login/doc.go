// Package login implements password login in two steps.
//
// Login checks an email and password and sends a six digit one-time code to
// the account's email. VerifyOTP exchanges that code for an opaque session
// token. Only active accounts get past the first step.
//
// Passwords are checked through a PasswordHasher. SHA256Hasher matches the
// unsalted hex digests of existing user tables and BcryptHasher is the
// stronger choice for new deployments. NewPasswordHasher verifies either
// format regardless of which one it hashes with:
//
//	hasher, err := login.NewPasswordHasher(cfg.Auth.PasswordHasher)
//	svc := login.NewLoginService(repo,
//		login.WithPasswordHasher(hasher),
//		login.WithNotificationManager(nm),
//	)
//	res, err := svc.Login(ctx, email, password)
//	session, err := svc.VerifyOTP(ctx, res.UserID, code)
package login
