// Package iam holds the administrator actions on accounts: listing them,
// approving pending registrations, changing roles and deleting accounts.
package iam
