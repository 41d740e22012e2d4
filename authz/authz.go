package authz

import (
	"bookreviews/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action identifies a mutating operation subject to the ownership policy.
type Action int

const (
	UpdateBook Action = iota
	DeleteBook
	UpdateReview
	DeleteReview
)

// CanMutate decides whether an actor may perform action on a resource
// owned by ownerID. Book mutations and review deletion allow the owner
// or an admin. Review edits are owner-only: admins may remove a review
// but never rewrite someone else's words.
func CanMutate(actorID, ownerID primitive.ObjectID, role string, action Action) bool {
	owner := actorID == ownerID
	admin := role == models.RoleAdmin
	switch action {
	case UpdateReview:
		return owner
	case UpdateBook, DeleteBook, DeleteReview:
		return owner || admin
	}
	return false
}
