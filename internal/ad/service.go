// AngelaMos | 2026
// service.go

package ad

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/callboard/internal/authz"
	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// ErrAdMissing is returned when an operation names an ad that does not exist
// as its parent. It matches core.ErrNotFound.
var ErrAdMissing = fmt.Errorf("ad does not exist: %w", core.ErrNotFound)

// Service runs every ad operation in the same order: authentication gate,
// target lookup, object rule, then the write. An anonymous caller therefore
// sees 401 before it could learn whether an id exists.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(
	ctx context.Context,
	p *authz.Principal,
	params ListParams,
) ([]Ad, int, error) {
	if err := authz.Authenticate(p, authz.KindAd, authz.ActionReadList); err != nil {
		return nil, 0, err
	}

	params.AuthorID = nil
	return s.repo.List(ctx, params)
}

func (s *Service) ListMine(
	ctx context.Context,
	p *authz.Principal,
	params ListParams,
) ([]Ad, int, error) {
	if err := authz.Authenticate(p, authz.KindAd, authz.ActionReadMine); err != nil {
		return nil, 0, err
	}

	authorID, err := authz.AuthorScope(p)
	if err != nil {
		return nil, 0, err
	}

	params.AuthorID = &authorID
	return s.repo.List(ctx, params)
}

func (s *Service) Get(
	ctx context.Context,
	p *authz.Principal,
	id int64,
) (*Ad, error) {
	if err := authz.Authenticate(p, authz.KindAd, authz.ActionReadOne); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, p, authz.ActionReadOne, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Exists reports whether an ad row is present. Feedback creation and listing
// use it to turn a dangling ad id into 404.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) Create(
	ctx context.Context,
	p *authz.Principal,
	req AdRequest,
) (*Ad, error) {
	ctx, span := core.StartSpan(ctx, "ad.create")
	defer span.End()

	if err := authz.Authorize(p, authz.KindAd, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	authorID := p.UserID
	a := &Ad{AuthorID: &authorID}
	req.Apply(a, true)

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, core.ErrForeignKey) {
			return nil, fmt.Errorf("create ad: author gone: %w", core.ErrUnauthorized)
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("ad.id", a.ID))
	s.logger.Info("ad created", "ad_id", a.ID, "author_id", authorID)

	return a, nil
}

func (s *Service) Update(
	ctx context.Context,
	p *authz.Principal,
	id int64,
	req AdRequest,
	replace bool,
) (*Ad, error) {
	ctx, span := core.StartSpan(ctx, "ad.update", attribute.Int64("ad.id", id))
	defer span.End()

	if err := authz.Authenticate(p, authz.KindAd, authz.ActionUpdate); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, p, authz.ActionUpdate, a); err != nil {
		return nil, err
	}

	req.Apply(a, replace)

	if err := s.repo.Update(ctx, a); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return a, nil
}

func (s *Service) Delete(
	ctx context.Context,
	p *authz.Principal,
	id int64,
) error {
	ctx, span := core.StartSpan(ctx, "ad.delete", attribute.Int64("ad.id", id))
	defer span.End()

	if err := authz.Authenticate(p, authz.KindAd, authz.ActionDelete); err != nil {
		return err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, p, authz.ActionDelete, a); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		core.SetSpanError(ctx, err)
		return err
	}

	s.logger.Info("ad deleted", "ad_id", id, "by", p.UserID)
	return nil
}

func (s *Service) authorize(
	ctx context.Context,
	p *authz.Principal,
	action authz.Action,
	a *Ad,
) error {
	err := authz.Authorize(p, authz.KindAd, action, a.Target())
	if err != nil {
		s.logger.DebugContext(ctx, "ad access denied",
			"ad_id", a.ID,
			"action", action.String(),
			"user_id", p.UserID,
		)
	}
	return err
}
