package service

import "github.com/set-night/mindcoach/internal/domain"

type UserService struct {
	histories domain.Histories
	opts      []domain.UserOption
}

func NewUserService(histories domain.Histories, opts ...domain.UserOption) *UserService {
	return &UserService{histories: histories, opts: opts}
}

// Get builds the User aggregate for userName. Users exist implicitly; there
// is nothing to look up beyond the history store.
func (s *UserService) Get(userName string) *domain.User {
	return domain.NewUser(userName, s.histories.History(userName), s.opts...)
}
