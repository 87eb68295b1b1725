package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/openbank/walletd/internal/domain"
	"github.com/openbank/walletd/internal/infrastructure/metrics"
)

// UserUseCase handles user provisioning and authentication. Provisioning a
// user creates their wallet account in the same database transaction, so a
// user without an account is never observable.
type UserUseCase struct {
	txManager   TxManager
	userRepo    UserRepository
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewUserUseCase creates a new UserUseCase. outboxRepo and m may be nil.
func NewUserUseCase(
	txManager TxManager,
	userRepo UserRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *UserUseCase {
	return &UserUseCase{
		txManager:   txManager,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// RegisterInput represents input for registering a user.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a user with a hashed password and a zero-balance account.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          input.Email,
		Name:           input.Name,
		HashedPassword: string(hashed),
		Role:           domain.RoleUser,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	account := &domain.Account{
		ID:        user.ID,
		Balance:   decimal.Zero,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin provisioning: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if err := uc.userRepo.CreateTx(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("%w: create user: %v", domain.ErrStorage, err)
	}

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("%w: create account: %v", domain.ErrStorage, err)
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: domain.AccountCreatedEvent{
				AccountID: account.ID,
				UserID:    user.ID,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, fmt.Errorf("%w: create event: %v", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit provisioning: %v", domain.ErrStorage, err)
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	user.HashedPassword = ""
	return user, nil
}

// AuthenticateInput represents authentication input.
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies user credentials.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil || user == nil {
		uc.recordAuthFailure("unknown_user")
		return nil, domain.ErrUnauthorized
	}

	if !user.Active {
		uc.recordAuthFailure("deactivated")
		return nil, domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		uc.recordAuthFailure("bad_password")
		return nil, domain.ErrUnauthorized
	}

	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues("success").Inc()
	}

	user.HashedPassword = ""
	return user, nil
}

func (uc *UserUseCase) recordAuthFailure(reason string) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.AuthAttempts.WithLabelValues("failure").Inc()
	uc.metrics.AuthFailures.WithLabelValues(reason).Inc()
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}
