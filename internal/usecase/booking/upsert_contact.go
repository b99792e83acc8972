package booking

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/booking-crm/internal/audit"
	domain "github.com/BruksfildServices01/booking-crm/internal/domain/booking"
	"github.com/BruksfildServices01/booking-crm/internal/httperr"
	"github.com/BruksfildServices01/booking-crm/internal/models"
	"github.com/BruksfildServices01/booking-crm/internal/session"
	"github.com/BruksfildServices01/booking-crm/internal/validators"
)

const (
	usernameBaseMax     = 60
	usernameMax         = 64
	usernameMaxAttempts = 10
)

// ======================================================
// INPUT
// ======================================================

type ContactInput struct {
	Name      string
	Email     string // usado só se a sessão não tiver e-mail pendente
	PhoneCode string
	Phone     string
	Instagram string
}

// ======================================================
// USE CASE
// ======================================================

type UpsertContact struct {
	repo       domain.Repository
	flush      *FlushStaged
	audit      audit.Sink
	defaultUTM string
	suffix     func() int
}

func NewUpsertContact(
	repo domain.Repository,
	flush *FlushStaged,
	sink audit.Sink,
	defaultUTM string,
) *UpsertContact {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if defaultUTM == "" {
		defaultUTM = "direct"
	}
	return &UpsertContact{
		repo:       repo,
		flush:      flush,
		audit:      sink,
		defaultUTM: defaultUTM,
		suffix:     func() int { return 1000 + rand.Intn(9000) },
	}
}

// FullPhone junta código e número separados por espaço.
func FullPhone(code, number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(code) + " " + number)
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UpsertContact) Execute(
	ctx context.Context,
	f *session.Funnel,
	in ContactInput,
) (*models.User, error) {

	name := strings.TrimSpace(in.Name)
	phone := FullPhone(in.PhoneCode, in.Phone)
	instagram := strings.TrimSpace(in.Instagram)

	linkedID, err := f.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		user    *models.User
		created bool
	)

	if linkedID != nil {
		user, err = uc.updateExisting(ctx, f, *linkedID, name, phone, instagram)
	} else {
		user, created, err = uc.createLead(ctx, f, in.Email, name, phone, instagram)
	}
	if err != nil {
		return nil, err
	}

	if linkedID == nil {
		if err := f.SetUserID(ctx, user.ID); err != nil {
			return nil, err
		}
		if err := f.Bag().Pop(ctx, session.KeyEmailInput); err != nil {
			return nil, err
		}
	}

	if created {
		uc.audit.Dispatch(audit.Event{
			ActorID:  &user.ID,
			Action:   audit.ActionLeadCreated,
			Entity:   "user",
			EntityID: &user.ID,
		})
	}

	if _, err := uc.flush.Execute(ctx, f, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UpsertContact) utm(ctx context.Context, f *session.Funnel) (string, error) {
	utm, err := f.UTM(ctx)
	if err != nil {
		return "", err
	}
	if utm == "" {
		utm = uc.defaultUTM
	}
	return utm, nil
}

// --------------------------------------------------
// Lead novo
// --------------------------------------------------

func (uc *UpsertContact) createLead(
	ctx context.Context,
	f *session.Funnel,
	payloadEmail string,
	name, phone, instagram string,
) (*models.User, bool, error) {

	email, err := f.EmailInput(ctx)
	if err != nil {
		return nil, false, err
	}
	if email == "" {
		email = validators.NormalizeEmail(payloadEmail)
	}
	if email == "" {
		return nil, false, httperr.ErrBusiness(httperr.CodeMissingIdentity)
	}
	if !validators.IsEmailValid(email) {
		return nil, false, httperr.ErrBusiness(httperr.CodeInvalidEmail)
	}

	utm, err := uc.utm(ctx, f)
	if err != nil {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash placeholder password: %w", err)
	}

	var (
		user    *models.User
		created bool
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		// o e-mail pode ter sido cadastrado entre identify e agora
		existing, err := tx.FindUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			user = existing
			return upsertProfile(ctx, tx, existing, name, phone, instagram, utm)
		}

		username, err := uc.uniqueUsername(ctx, tx, usernameBase(name, email))
		if err != nil {
			return err
		}

		u := &models.User{
			Name:         name,
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleLead,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}

		if err := tx.CreateLeadProfile(ctx, &models.LeadProfile{
			UserID:    u.ID,
			Phone:     phone,
			Instagram: instagram,
			UTMSource: utm,
			Status:    models.LeadStatusNew,
		}); err != nil {
			return err
		}

		user = u
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return user, created, nil
}

func usernameBase(name, email string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	if r := []rune(base); len(r) > usernameBaseMax {
		base = string(r[:usernameBaseMax])
	}
	return base
}

// uniqueUsername tenta o nome base, depois sufixos aleatórios; esgotadas as
// tentativas cai num identificador gerado.
func (uc *UpsertContact) uniqueUsername(
	ctx context.Context,
	tx domain.Repository,
	base string,
) (string, error) {

	candidate := base
	for i := 0; i < usernameMaxAttempts; i++ {
		taken, err := tx.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = truncate(fmt.Sprintf("%s_%d", base, uc.suffix()), usernameMax)
	}

	return "lead_" + uuid.NewString(), nil
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}

// --------------------------------------------------
// Lead existente
// --------------------------------------------------

func (uc *UpsertContact) updateExisting(
	ctx context.Context,
	f *session.Funnel,
	userID uint,
	name, phone, instagram string,
) (*models.User, error) {

	utm, err := uc.utm(ctx, f)
	if err != nil {
		return nil, err
	}

	var user *models.User

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return httperr.ErrBusiness(httperr.CodeMissingIdentity)
		}

		user = u
		return upsertProfile(ctx, tx, u, name, phone, instagram, utm)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// upsertProfile nunca apaga telefone/instagram com valor vazio e nunca
// sobrescreve o utm de um perfil existente.
func upsertProfile(
	ctx context.Context,
	tx domain.Repository,
	u *models.User,
	name, phone, instagram, utm string,
) error {

	if name != "" && name != u.Name {
		u.Name = name
		if err := tx.SaveUser(ctx, u); err != nil {
			return err
		}
	}

	p, err := tx.GetLeadProfile(ctx, u.ID)
	if err != nil {
		return err
	}

	if p == nil {
		return tx.CreateLeadProfile(ctx, &models.LeadProfile{
			UserID:    u.ID,
			Phone:     phone,
			Instagram: instagram,
			UTMSource: utm,
			Status:    models.LeadStatusNew,
		})
	}

	changed := false
	if phone != "" && phone != p.Phone {
		p.Phone = phone
		changed = true
	}
	if instagram != "" && instagram != p.Instagram {
		p.Instagram = instagram
		changed = true
	}
	if !changed {
		return nil
	}
	return tx.SaveLeadProfile(ctx, p)
}
