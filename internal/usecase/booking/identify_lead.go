package booking

import (
	"context"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/validators"
)

// IdentifyLead associa o e-mail a um usuário existente. E-mail novo só fica
// guardado na sessão; o registro nasce nos dados de contato.
type IdentifyLead struct {
	repo  domain.Repository
	flush *FlushStaged
}

func NewIdentifyLead(repo domain.Repository, flush *FlushStaged) *IdentifyLead {
	return &IdentifyLead{repo: repo, flush: flush}
}

func (uc *IdentifyLead) Execute(
	ctx context.Context,
	f *session.Funnel,
	rawEmail string,
) (*models.User, error) {

	email := validators.NormalizeEmail(rawEmail)
	if email == "" {
		return nil, httperr.ErrBusiness(httperr.CodeMissingEmail)
	}
	if !validators.IsEmailValid(email) {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidEmail)
	}

	user, err := uc.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		if err := f.ClearUserID(ctx); err != nil {
			return nil, err
		}
		if err := f.SetEmailInput(ctx, email); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := f.SetUserID(ctx, user.ID); err != nil {
		return nil, err
	}

	if _, err := uc.flush.Execute(ctx, f, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}
