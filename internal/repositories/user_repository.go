package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chat-notifier/internal/models"
)

const usersCollection = "users"

// UserRepository abstracts user profile persistence.
type UserRepository interface {
	// GetUser returns nil without error when the user document does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ClearFCMToken(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// UserRepo is a Firestore implementation of UserRepository.
type UserRepo struct {
	client *firestore.Client
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(client *firestore.Client) *UserRepo {
	return &UserRepo{client: client}
}

// GetUser fetches a user profile by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// ClearFCMToken removes the stored delivery token from the user profile.
// A missing user document is not an error.
func (r *UserRepo) ClearFCMToken(ctx context.Context, userID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: firestore.Delete},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear fcm token for %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the user profile document.
func (r *UserRepo) DeleteUser(ctx context.Context, userID string) error {
	if _, err := r.client.Collection(usersCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	return nil
}
