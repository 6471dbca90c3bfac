// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"shopreg/config"
	deliverycontext "shopreg/internal/delivery/context"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/domain/repository"
	"shopreg/internal/domain/service"
	"shopreg/internal/errors"
	"shopreg/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const minShopNames = 3

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo       repository.UserRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	eventPublisher service.EventPublisher
	metrics        service.AuthMetrics
	tokenTTL       time.Duration
	rememberMeTTL  time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo       repository.UserRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	EventPublisher service.EventPublisher
	Metrics        service.AuthMetrics
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		userRepo:       params.UserRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		eventPublisher: params.EventPublisher,
		metrics:        params.Metrics,
		logger:         params.Logger,
		now:            time.Now,
	}
	if params.Config != nil && params.Config.Auth != nil {
		srv.tokenTTL = params.Config.Auth.TokenTTL
		srv.rememberMeTTL = params.Config.Auth.RememberMeTTL
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// Signup registers a user together with its shops and issues a default-lifetime token.
// The uniqueness pre-checks may race with a concurrent signup; CreateWithShops is the
// authoritative check and reports a conflict when it loses.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	out, err := srv.signup(ctx, input)
	srv.metrics.ObserveSignup(signupOutcome(err))

	return out, err
}

func (srv *authService) signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	srv.log(ctx).Info("Starting signup",
		slog.String("username", input.Username),
		slog.Int("shopCount", len(input.ShopNames)),
	)

	if err := checkShopNames(input.ShopNames); err != nil {
		return nil, err
	}

	_, err := srv.userRepo.FindByUsername(ctx, input.Username)
	switch {
	case err == nil:
		srv.log(ctx).Info("Signup rejected, username taken", slog.String("username", input.Username))

		return nil, domainerrors.ErrUsernameTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, errors.Wrap(err, "failed to check username")
	}

	existing, err := srv.userRepo.FindExistingShopNames(ctx, input.ShopNames)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check shop names")
	}
	if len(existing) > 0 {
		srv.log(ctx).Info("Signup rejected, shop names taken",
			slog.String("username", input.Username),
			slog.Any("shopNames", existing),
		)

		return nil, domainerrors.ErrShopNamesTaken.
			WithMessage("Shop names already exist: " + strings.Join(existing, ", ")).
			WithDetails(existing)
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user, err := srv.userRepo.CreateWithShops(ctx, input.Username, passwordHash, input.ShopNames)
	if err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindConflict {
			srv.log(ctx).Warn("Signup lost uniqueness race", slog.String("username", input.Username), slog.Any("error", err))

			return nil, err
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	token, expiresAt, err := srv.tokenService.GenerateToken(user.ID, user.Username, srv.tokenTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.publishRegistered(ctx, user.ID, user.Username, user.ShopNameList())

	srv.log(ctx).Info("Signup completed", slog.String("username", user.Username), slog.String("userID", user.ID.String()))

	return &usecase.SignupOutput{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Signin verifies credentials and issues a token whose lifetime depends on RememberMe.
func (srv *authService) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.SigninOutput, error) {
	out, err := srv.signin(ctx, input)
	srv.metrics.ObserveSignin(signinOutcome(err))

	return out, err
}

func (srv *authService) signin(ctx context.Context, input *usecase.SigninInput) (*usecase.SigninOutput, error) {
	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Info("Signin rejected, user not found", slog.String("username", input.Username))

			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	ok, err := srv.hasher.Check(input.Password, user.PasswordHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to verify password")
	}
	if !ok {
		srv.log(ctx).Info("Signin rejected, incorrect password", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidCredentials
	}

	ttl := srv.tokenTTL
	if input.RememberMe {
		ttl = srv.rememberMeTTL
	}

	token, expiresAt, err := srv.tokenService.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.log(ctx).Info("Signin completed",
		slog.String("userID", user.ID.String()),
		slog.Bool("rememberMe", input.RememberMe),
	)

	return &usecase.SigninOutput{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// publishRegistered is best effort: a failed publish is logged and never fails the signup.
func (srv *authService) publishRegistered(ctx context.Context, userID uuid.UUID, username string, shopNames []string) {
	event := &service.AccountEvent{
		EventID:    uuid.NewString(),
		RequestID:  deliverycontext.RequestIDFrom(ctx),
		Type:       service.AccountEventRegistered,
		UserID:     userID.String(),
		Username:   username,
		ShopNames:  shopNames,
		OccurredAt: srv.now().UTC(),
	}

	if err := srv.eventPublisher.PublishAccountEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account event",
			slog.String("eventType", event.Type),
			slog.String("userID", event.UserID),
			slog.Any("error", err),
		)
	}
}

// checkShopNames repeats the request-level rule: at least three distinct, non-empty names.
func checkShopNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return domainerrors.ErrValidationFailed.WithMessage("Shop name cannot be empty")
		}
		if _, dup := seen[name]; dup {
			return domainerrors.ErrValidationFailed.WithMessage("Shop names must be unique")
		}
		seen[name] = struct{}{}
	}
	if len(seen) < minShopNames {
		return domainerrors.ErrValidationFailed.WithMessage("You must enter at least 3 shop names")
	}

	return nil
}

func signupOutcome(err error) string {
	switch {
	case err == nil:
		return service.OutcomeSuccess
	case domainerrors.KindOf(err) == domainerrors.KindValidation:
		return service.OutcomeInvalidInput
	case errors.Is(err, domainerrors.ErrUsernameTaken):
		return service.OutcomeUsernameTaken
	case errors.Is(err, domainerrors.ErrShopNamesTaken):
		return service.OutcomeShopNamesTaken
	case domainerrors.KindOf(err) == domainerrors.KindConflict:
		return service.OutcomeConflict
	default:
		return service.OutcomeError
	}
}

func signinOutcome(err error) string {
	switch {
	case err == nil:
		return service.OutcomeSuccess
	case errors.Is(err, domainerrors.ErrUserNotFound):
		return service.OutcomeUserNotFound
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		return service.OutcomeInvalidCredentials
	default:
		return service.OutcomeError
	}
}
