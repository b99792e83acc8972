package booking

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/session"
)

type ContactPrefill struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	PhoneCode string `json:"phone_code"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
}

type GetContactPrefill struct {
	repo domain.Repository
}

func NewGetContactPrefill(repo domain.Repository) *GetContactPrefill {
	return &GetContactPrefill{repo: repo}
}

// Execute devolve os dados conhecidos para pré-preencher o formulário.
func (uc *GetContactPrefill) Execute(ctx context.Context, f *session.Funnel) (*ContactPrefill, error) {
	userID, err := f.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if userID == nil {
		email, err := f.EmailInput(ctx)
		if err != nil {
			return nil, err
		}
		return &ContactPrefill{Email: email}, nil
	}

	u, err := uc.repo.GetUser(ctx, *userID)
	if err != nil {
		return nil, err
	}

	out := &ContactPrefill{Email: u.Email, Name: u.Name}
	if out.Name == "" {
		out.Name = u.Username
	}

	p, err := uc.repo.GetLeadProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		out.Instagram = p.Instagram
		if code, number, ok := strings.Cut(p.Phone, " "); ok {
			out.PhoneCode, out.Phone = code, number
		} else {
			out.Phone = p.Phone
		}
	}

	return out, nil
}
