// Package team keeps the roster of project team members.
//
// Members are plain directory entries with a display name, an email and a
// free-form role (Contributor when none is given). They are not accounts:
// signing in is handled by pkg/login against pkg/user records.
//
// Storage backends mirror pkg/project: InMemoryRepository, FileRepository
// (team.json under DATA_DIR), PostgresRepository (team_members table) and
// DynamoDBRepository (items keyed by memberId).
package team
