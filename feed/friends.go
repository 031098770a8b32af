package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
)

const (
	rpcUserID      = "get_user_id_by_email"
	unknownAddress = "Unknown email"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("no pending request from this user")
	ErrSelfRequest     = errors.New("cannot befriend yourself")
)

type social struct {
	Friends  []string `json:"friends"`
	Requests []string `json:"requests"`
}

// UserIDByEmail resolves an account email to its user ID.
func (f *Feed) UserIDByEmail(ctx context.Context, email string) (string, error) {
	resp, err := f.backend.RPC(ctx, rpcUserID, map[string]string{"email": email})
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	var out []struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("failed to decode user: %w", err)
	}
	if len(out) == 0 || out[0].ID == "" {
		return "", ErrUserNotFound
	}
	return out[0].ID, nil
}

// Friends lists the friends of userID and the emails waiting for an answer.
func (f *Feed) Friends(ctx context.Context, userID string) (*model.FriendsResponse, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	p, err := f.social(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &model.FriendsResponse{
		UserID:   userID,
		Friends:  make([]model.Friend, 0, len(p.Friends)),
		Requests: append([]string{}, p.Requests...),
	}
	for _, id := range p.Friends {
		email := f.email(ctx, id)
		if email == unknownUser {
			email = unknownAddress
		}
		out.Friends = append(out.Friends, model.Friend{ID: id, Email: email})
	}
	return out, nil
}

// RequestFriend files fromEmail in the pending requests of the account behind toEmail.
func (f *Feed) RequestFriend(ctx context.Context, fromEmail, toEmail string) error {
	if fromEmail == toEmail {
		return ErrSelfRequest
	}
	target, err := f.UserIDByEmail(ctx, toEmail)
	if err != nil {
		return err
	}

	p, err := f.social(ctx, target)
	if err != nil {
		return err
	}
	if slices.Contains(p.Requests, fromEmail) {
		return nil
	}

	requests := append(p.Requests, fromEmail)
	if err := f.updateProfile(ctx, target, map[string][]string{"requests": requests}); err != nil {
		f.logger.Error("failed to send friend request", zap.String("to", target), zap.Error(err))
		return fmt.Errorf("failed to send friend request: %w", err)
	}
	return nil
}

// AnswerRequest drops requesterEmail from the pending requests of userID.
// When accept is set both users are added to each other's friends.
func (f *Feed) AnswerRequest(ctx context.Context, userID, requesterEmail string, accept bool) error {
	if userID == "" {
		return ErrUserRequired
	}
	p, err := f.social(ctx, userID)
	if err != nil {
		return err
	}
	if !slices.Contains(p.Requests, requesterEmail) {
		return ErrRequestNotFound
	}

	requests := slices.DeleteFunc(slices.Clone(p.Requests), func(e string) bool { return e == requesterEmail })
	if err := f.updateProfile(ctx, userID, map[string][]string{"requests": requests}); err != nil {
		return fmt.Errorf("failed to update requests: %w", err)
	}
	if !accept {
		return nil
	}

	requester, err := f.UserIDByEmail(ctx, requesterEmail)
	if err != nil {
		return err
	}
	if err := f.addFriend(ctx, userID, requester, p.Friends); err != nil {
		return err
	}
	other, err := f.social(ctx, requester)
	if err != nil {
		return err
	}
	return f.addFriend(ctx, requester, userID, other.Friends)
}

func (f *Feed) addFriend(ctx context.Context, userID, friendID string, current []string) error {
	if slices.Contains(current, friendID) {
		return nil
	}
	friends := append(slices.Clone(current), friendID)
	if err := f.updateProfile(ctx, userID, map[string][]string{"friends": friends}); err != nil {
		f.logger.Error("failed to add friend", zap.String("user", userID), zap.Error(err))
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

func (f *Feed) social(ctx context.Context, userID string) (*social, error) {
	resp, err := f.backend.From(tableProfiles).Select("friends,requests").Eq("id", userID).Single().Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	var p social
	if err := resp.JSON(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

func (f *Feed) updateProfile(ctx context.Context, userID string, patch any) error {
	_, err := f.backend.From(tableProfiles).Eq("id", userID).ExecuteUpdate(ctx, patch)
	return err
}
