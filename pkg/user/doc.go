// Package user holds the account record, its public projection and the
// credential store adapter.
//
// UserRepository has four implementations: InMemoryUserRepository,
// FileUserRepository (JSON file), PostgresUserRepository (pgx) and
// DynamoDBUserRepository (aws-sdk-go-v2). All of them index users by email
// and session token and enforce email uniqueness and single-bootstrap
// atomically, so UserService.Provision is safe under concurrent
// registrations.
package user
