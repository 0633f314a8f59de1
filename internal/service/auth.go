package service

import (
	"context"
	"log/slog"

	"github.com/repairlab/repairhub/internal/domain/job"
	"github.com/repairlab/repairhub/internal/domain/user"
	"github.com/repairlab/repairhub/internal/jobs"
	"github.com/repairlab/repairhub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, t jobs.JobType, payload any) (job.Job, error)
}

// Session is what a successful register or login hands back.
type Session struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	queue  JobEnqueuer
	log    *slog.Logger

	// policy knob: the default keeps the historical behavior where a
	// disabled account can still log in with valid credentials
	rejectDisabled bool
}

func NewAuthService(users UserStore, tokens TokenIssuer, queue JobEnqueuer, rejectDisabled bool, log *slog.Logger) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		queue:          queue,
		rejectDisabled: rejectDisabled,
		log:            log,
	}
}

func (s *AuthService) Register(ctx context.Context, req user.CreateUserRequest) (Session, error) {
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return Session{}, err
	}

	u, err := s.users.Create(ctx, user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       user.StatusAvailable,
	})

	if err != nil {
		// user.ErrEmailTaken passes through for the boundary to map
		return Session{}, err
	}

	token, err := s.tokens.Issue(u.ID)

	if err != nil {
		return Session{}, err
	}

	if s.queue != nil {
		_, err = s.queue.Enqueue(ctx, jobs.JobUserWelcome, jobs.UserWelcomePayload{
			UserID: u.ID,
			Email:  u.Email,
			Name:   u.Name,
		})

		// the account exists either way; a missed welcome is not worth a 500
		if err != nil {
			s.log.WarnContext(ctx, "welcome job enqueue failed", "user_id", u.ID, "error", err)
		}
	}

	return Session{Token: token, User: u.Public()}, nil
}

// Login keeps the unknown-account and wrong-password outcomes distinct on
// purpose: an unknown email is ErrAccountNotFound, a bad password on a known
// account is ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)

	if err != nil {
		if err == user.ErrNotFound {
			return Session{}, user.ErrAccountNotFound
		}
		return Session{}, err
	}

	ok, err := security.VerifyPassword(req.Password, u.PasswordHash)

	if err != nil {
		// corrupt stored hash, not a caller mistake
		return Session{}, err
	}

	if !ok {
		return Session{}, user.ErrInvalidCredentials
	}

	if s.rejectDisabled && u.Disabled() {
		return Session{}, user.ErrAccountDisabled
	}

	token, err := s.tokens.Issue(u.ID)

	if err != nil {
		return Session{}, err
	}

	return Session{Token: token, User: u.Public()}, nil
}

// ChangePassword swaps the hash in place. Previously issued tokens stay
// valid; there is no session invalidation tied to a password change.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req user.ChangePasswordRequest) error {
	// rejected before any credential check, so the outcome does not leak
	// whether currentPassword was right
	if req.CurrentPassword == req.NewPassword {
		return user.ErrSamePassword
	}

	u, err := s.users.GetByID(ctx, userID)

	if err != nil {
		if err == user.ErrNotFound {
			return user.ErrAccountNotFound
		}
		return err
	}

	ok, err := security.VerifyPassword(req.CurrentPassword, u.PasswordHash)

	if err != nil {
		return err
	}

	if !ok {
		return user.ErrInvalidCredentials
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}
