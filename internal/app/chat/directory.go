package chat

import (
	"context"

	"dmchat/internal/app/model"
	"dmchat/internal/app/store"
	"dmchat/internal/pkg/errs"
)

// DirectoryService answers user discovery queries.
type DirectoryService struct {
	store store.Store
}

// NewDirectoryService constructs a DirectoryService backed by the given store.
func NewDirectoryService(st store.Store) *DirectoryService {
	return &DirectoryService{store: st}
}

// Search finds users by exact phone-number match or case-insensitive name
// substring. Results are de-duplicated by identity and never include
// excludeUserID, even when it matches the query.
func (s *DirectoryService) Search(ctx context.Context, query, excludeUserID string) ([]model.User, *errs.CustomError) {
	seen := make(map[string]struct{})
	var results []model.User

	add := func(u model.User) {
		if u.ID == excludeUserID {
			return
		}
		if _, ok := seen[u.ID]; ok {
			return
		}
		seen[u.ID] = struct{}{}
		results = append(results, u)
	}

	byPhone, err := s.store.FindUserByPhone(ctx, query)
	if err == nil {
		add(*byPhone)
	} else if cerr := ignoreNotFound(err); cerr != nil {
		return nil, cerr
	}

	byName, err := s.store.FindUsersByNameContains(ctx, query)
	if err != nil {
		if cerr := ignoreNotFound(err); cerr != nil {
			return nil, cerr
		}
	}
	for _, u := range byName {
		add(u)
	}

	return results, nil
}

// OnlineUsers returns every user whose presence status is online.
func (s *DirectoryService) OnlineUsers(ctx context.Context) ([]model.User, *errs.CustomError) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, mapStoreErr(err, errs.ErrUserNotFound)
	}

	var online []model.User
	for _, u := range users {
		if u.Status == model.StatusOnline {
			online = append(online, u)
		}
	}
	return online, nil
}

// ignoreNotFound maps a store error, treating ErrNotFound as a non-error so
// empty lookups just contribute nothing to the result set.
func ignoreNotFound(err error) *errs.CustomError {
	if err == nil {
		return nil
	}
	cerr := mapStoreErr(err, errs.ErrUserNotFound)
	if cerr.Code == errs.ErrUserNotFound {
		return nil
	}
	return cerr
}
