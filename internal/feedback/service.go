// AngelaMos | 2026
// service.go

package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/callboard/internal/ad"
	"github.com/carterperez-dev/templates/callboard/internal/authz"
	"github.com/carterperez-dev/templates/callboard/internal/core"
)

// AdLookup is the one thing feedback needs from the ad side: whether a parent
// ad still exists. ad.Service satisfies it.
type AdLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   Repository
	ads    AdLookup
	logger *slog.Logger
}

func NewService(repo Repository, ads AdLookup, logger *slog.Logger) *Service {
	return &Service{repo: repo, ads: ads, logger: logger}
}

func (s *Service) requireAd(ctx context.Context, adID int64) error {
	ok, err := s.ads.Exists(ctx, adID)
	if err != nil {
		return fmt.Errorf("look up ad %d: %w", adID, err)
	}
	if !ok {
		return fmt.Errorf("ad %d: %w", adID, ad.ErrAdMissing)
	}
	return nil
}

// ListByAd lists the feedback left on one ad. A missing ad is 404 rather
// than an empty page.
func (s *Service) ListByAd(
	ctx context.Context,
	p *authz.Principal,
	adID int64,
	page core.PageParams,
) ([]Feedback, int, error) {
	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionReadList); err != nil {
		return nil, 0, err
	}

	if err := s.requireAd(ctx, adID); err != nil {
		return nil, 0, err
	}

	return s.repo.List(ctx, ListParams{PageParams: page, AdID: &adID})
}

func (s *Service) ListMine(
	ctx context.Context,
	p *authz.Principal,
	page core.PageParams,
) ([]Feedback, int, error) {
	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionReadMine); err != nil {
		return nil, 0, err
	}

	authorID, err := authz.AuthorScope(p)
	if err != nil {
		return nil, 0, err
	}

	return s.repo.List(ctx, ListParams{PageParams: page, AuthorID: &authorID})
}

func (s *Service) Get(
	ctx context.Context,
	p *authz.Principal,
	id int64,
) (*Feedback, error) {
	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionReadOne); err != nil {
		return nil, err
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, p, authz.ActionReadOne, f); err != nil {
		return nil, err
	}

	return f, nil
}

// Create stamps both the author and the ad from the request context, never
// from the body.
func (s *Service) Create(
	ctx context.Context,
	p *authz.Principal,
	adID int64,
	req FeedbackRequest,
) (*Feedback, error) {
	ctx, span := core.StartSpan(ctx, "feedback.create", attribute.Int64("ad.id", adID))
	defer span.End()

	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionCreate); err != nil {
		return nil, err
	}

	if err := s.requireAd(ctx, adID); err != nil {
		return nil, err
	}

	if err := authz.Authorize(p, authz.KindFeedback, authz.ActionCreate, nil); err != nil {
		return nil, err
	}

	authorID := p.UserID
	f := &Feedback{AuthorID: &authorID, AdID: &adID}
	req.Apply(f, true)

	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, core.ErrForeignKey) {
			return nil, s.explainForeignKey(ctx, adID, err)
		}
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("feedback.id", f.ID))
	s.logger.Info("feedback created",
		"feedback_id", f.ID,
		"ad_id", adID,
		"author_id", authorID,
	)

	return f, nil
}

// explainForeignKey resolves which reference vanished between the pre-check
// and the insert: the ad (404) or the author's own account (401).
func (s *Service) explainForeignKey(ctx context.Context, adID int64, cause error) error {
	if err := s.requireAd(ctx, adID); err != nil {
		return err
	}
	return fmt.Errorf("create feedback: %w: %w", core.ErrUnauthorized, cause)
}

func (s *Service) Update(
	ctx context.Context,
	p *authz.Principal,
	id int64,
	req FeedbackRequest,
	replace bool,
) (*Feedback, error) {
	ctx, span := core.StartSpan(ctx, "feedback.update", attribute.Int64("feedback.id", id))
	defer span.End()

	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionUpdate); err != nil {
		return nil, err
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, p, authz.ActionUpdate, f); err != nil {
		return nil, err
	}

	req.Apply(f, replace)

	if err := s.repo.Update(ctx, f); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return f, nil
}

func (s *Service) Delete(
	ctx context.Context,
	p *authz.Principal,
	id int64,
) error {
	ctx, span := core.StartSpan(ctx, "feedback.delete", attribute.Int64("feedback.id", id))
	defer span.End()

	if err := authz.Authenticate(p, authz.KindFeedback, authz.ActionDelete); err != nil {
		return err
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, p, authz.ActionDelete, f); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		core.SetSpanError(ctx, err)
		return err
	}

	s.logger.Info("feedback deleted", "feedback_id", id, "by", p.UserID)
	return nil
}

func (s *Service) authorize(
	ctx context.Context,
	p *authz.Principal,
	action authz.Action,
	f *Feedback,
) error {
	err := authz.Authorize(p, authz.KindFeedback, action, f.Target())
	if err != nil {
		s.logger.DebugContext(ctx, "feedback access denied",
			"feedback_id", f.ID,
			"action", action.String(),
			"user_id", p.UserID,
		)
	}
	return err
}
