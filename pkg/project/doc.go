// Package project stores projects and their tasks and notifies active admins
// when the last open task of a project is marked done.
//
// Repository implementations: InMemoryRepository, FileRepository (a JSON
// file under the data directory), PostgresRepository (tables projects and
// tasks) and DynamoDBRepository (projects keyed by projectId, tasks keyed by
// projectId and taskId).
package project
