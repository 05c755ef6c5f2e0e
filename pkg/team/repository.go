package team

import "context"

// Repository stores team members. Deleting an unknown member is not an error.
type Repository interface {
	CreateMember(ctx context.Context, m Member) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	DeleteMember(ctx context.Context, memberID string) error
}
