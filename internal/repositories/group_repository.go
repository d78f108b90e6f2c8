package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chat-notifier/internal/models"
)

const groupsCollection = "groups"

// GroupRepository abstracts group thread persistence. Groups are read-only
// from this subsystem's perspective.
type GroupRepository interface {
	// GetGroup returns nil without error when the group document does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
}

// GroupRepo is a Firestore implementation of GroupRepository.
type GroupRepo struct {
	client *firestore.Client
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(client *firestore.Client) *GroupRepo {
	return &GroupRepo{client: client}
}

// GetGroup fetches a group by id.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	snap, err := r.client.Collection(groupsCollection).Doc(groupID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group %s: %w", groupID, err)
	}

	var group models.Group
	if err := snap.DataTo(&group); err != nil {
		return nil, fmt.Errorf("decode group %s: %w", groupID, err)
	}
	group.ID = snap.Ref.ID
	return &group, nil
}
