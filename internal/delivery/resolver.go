package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// RecipientResolver maps a user id onto a deliverable address.
type RecipientResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

type userGetter interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// FirebaseRecipientResolver uses the user id directly when it is already an
// address and otherwise reads the account email from Firebase Auth.
type FirebaseRecipientResolver struct {
	users userGetter
}

// NewRecipientResolver builds a resolver. users may be nil, in which case only
// address-shaped user ids resolve.
func NewRecipientResolver(users userGetter) *FirebaseRecipientResolver {
	return &FirebaseRecipientResolver{users: users}
}

func (r *FirebaseRecipientResolver) Resolve(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id required")
	}
	if looksLikeAddress(userID) {
		return userID, nil
	}
	if r.users == nil {
		return "", fmt.Errorf("no address for user %s", userID)
	}

	user, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", fmt.Errorf("user %s not found", userID)
		}
		return "", fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if user == nil || user.UserInfo == nil || strings.TrimSpace(user.Email) == "" {
		return "", fmt.Errorf("user %s has no email", userID)
	}
	return user.Email, nil
}

func looksLikeAddress(value string) bool {
	if !strings.Contains(value, "@") {
		return false
	}
	_, err := mail.ParseAddress(value)
	return err == nil
}
