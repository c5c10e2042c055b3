package service

import (
	"context"

	"github.com/sandeepkv93/debt-ledger-service/internal/domain"
	"github.com/sandeepkv93/debt-ledger-service/internal/repository"
)

//go:generate mockgen -source=interfaces.go -destination=gomock/interfaces_mock.go -package=gomock

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, userID uint) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) (*CodeResult, error)
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ResendCode(ctx context.Context, email string, purpose domain.CodePurpose) (*CodeResult, error)
	GoogleLoginURL(state string) (string, error)
	LoginWithGoogle(ctx context.Context, code string) (*LoginResult, error)
}

type ContactServiceInterface interface {
	Create(ctx context.Context, userID uint, in ContactInput) (*domain.Contact, error)
	List(ctx context.Context, userID uint) (*ContactList, error)
	Get(ctx context.Context, userID, id uint) (*domain.Contact, error)
	Update(ctx context.Context, userID, id uint, patch ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, userID, id uint) (*ContactDeletion, error)
}

type DebtServiceInterface interface {
	Create(ctx context.Context, userID uint, in DebtInput) (*domain.Debt, error)
	List(ctx context.Context, userID uint, filter repository.DebtFilter, page repository.PageRequest) (repository.PageResult[domain.Debt], error)
	Get(ctx context.Context, userID, id uint) (*domain.Debt, error)
	Update(ctx context.Context, userID, id uint, patch DebtPatch) (*domain.Debt, error)
	MarkPaid(ctx context.Context, userID, id uint) (*domain.Debt, error)
	Delete(ctx context.Context, userID, id uint) error
	Overview(ctx context.Context, userID uint) (*DebtOverview, error)
}

type StatementServiceInterface interface {
	Generate(ctx context.Context, userID uint, filter repository.DebtFilter) (*Statement, error)
}

var (
	_ AuthServiceInterface      = (*AuthService)(nil)
	_ ContactServiceInterface   = (*ContactService)(nil)
	_ DebtServiceInterface      = (*DebtService)(nil)
	_ StatementServiceInterface = (*StatementService)(nil)
	_ CodeNotifier              = (*NotificationDispatcher)(nil)
	_ ObjectStore               = (*MinIOObjectStore)(nil)
)
