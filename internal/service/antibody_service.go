package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vbonduro/labinv/internal/apperrors"
	"github.com/vbonduro/labinv/internal/domain"
)

const maxAntibodyNameLen = 200

// genericIsotype marks a secondary raised against heavy and light chains,
// which binds every isotype of its target species.
const genericIsotype = "H+L"

// AntibodyMatch is a secondary that can detect a given primary. IsotypeMatch
// is true when the secondary names the primary's isotype rather than binding
// every isotype.
type AntibodyMatch struct {
	Secondary    *domain.SecondaryAntibody `json:"secondary"`
	IsotypeMatch bool                      `json:"isotype_match"`
}

type AntibodyService struct {
	antibodies antibodyRepository
	zones      zoneRepository
	logger     *zap.Logger
}

func NewAntibodyService(antibodies antibodyRepository, zones zoneRepository, logger *zap.Logger) *AntibodyService {
	return &AntibodyService{antibodies: antibodies, zones: zones, logger: logger}
}

func (s *AntibodyService) ListPrimaries(ctx context.Context) ([]*domain.PrimaryAntibody, error) {
	return s.antibodies.ListPrimaries(ctx)
}

func (s *AntibodyService) GetPrimary(ctx context.Context, id int64) (*domain.PrimaryAntibody, error) {
	a, err := s.antibodies.GetPrimary(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperrors.NotFound("primary antibody", id)
	}
	return a, nil
}

func (s *AntibodyService) CreatePrimary(ctx context.Context, a *domain.PrimaryAntibody) (*domain.PrimaryAntibody, error) {
	a.Name, a.HostSpecies, a.Isotype = strings.TrimSpace(a.Name), strings.TrimSpace(a.HostSpecies), strings.TrimSpace(a.Isotype)
	if err := s.validate(ctx, a.Name, &a.Zone); err != nil {
		return nil, err
	}
	created, err := s.antibodies.CreatePrimary(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info("primary antibody created", zap.Int64("antibody_id", created.ID))
	return created, nil
}

func (s *AntibodyService) UpdatePrimary(ctx context.Context, a *domain.PrimaryAntibody) (*domain.PrimaryAntibody, error) {
	a.Name, a.HostSpecies, a.Isotype = strings.TrimSpace(a.Name), strings.TrimSpace(a.HostSpecies), strings.TrimSpace(a.Isotype)
	if err := s.validate(ctx, a.Name, &a.Zone); err != nil {
		return nil, err
	}
	if err := s.antibodies.UpdatePrimary(ctx, a); err != nil {
		return nil, err
	}
	return s.GetPrimary(ctx, a.ID)
}

func (s *AntibodyService) DeletePrimary(ctx context.Context, id int64) error {
	if err := s.antibodies.DeletePrimary(ctx, id); err != nil {
		return err
	}
	s.logger.Info("primary antibody deleted", zap.Int64("antibody_id", id))
	return nil
}

func (s *AntibodyService) ListSecondaries(ctx context.Context) ([]*domain.SecondaryAntibody, error) {
	return s.antibodies.ListSecondaries(ctx)
}

func (s *AntibodyService) GetSecondary(ctx context.Context, id int64) (*domain.SecondaryAntibody, error) {
	a, err := s.antibodies.GetSecondary(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperrors.NotFound("secondary antibody", id)
	}
	return a, nil
}

func (s *AntibodyService) CreateSecondary(ctx context.Context, a *domain.SecondaryAntibody) (*domain.SecondaryAntibody, error) {
	normaliseSecondary(a)
	if err := s.validate(ctx, a.Name, &a.Zone); err != nil {
		return nil, err
	}
	created, err := s.antibodies.CreateSecondary(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info("secondary antibody created", zap.Int64("antibody_id", created.ID))
	return created, nil
}

func (s *AntibodyService) UpdateSecondary(ctx context.Context, a *domain.SecondaryAntibody) (*domain.SecondaryAntibody, error) {
	normaliseSecondary(a)
	if err := s.validate(ctx, a.Name, &a.Zone); err != nil {
		return nil, err
	}
	if err := s.antibodies.UpdateSecondary(ctx, a); err != nil {
		return nil, err
	}
	return s.GetSecondary(ctx, a.ID)
}

func (s *AntibodyService) DeleteSecondary(ctx context.Context, id int64) error {
	if err := s.antibodies.DeleteSecondary(ctx, id); err != nil {
		return err
	}
	s.logger.Info("secondary antibody deleted", zap.Int64("antibody_id", id))
	return nil
}

// MatchSecondaries lists the secondaries able to detect the primary: those
// raised against its host species whose target isotype is generic or names
// the primary's isotype. A target of "IgG" covers "IgG1". Isotype-specific
// matches come first.
func (s *AntibodyService) MatchSecondaries(ctx context.Context, primaryID int64) ([]AntibodyMatch, error) {
	primary, err := s.GetPrimary(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	matches := []AntibodyMatch{}
	if primary.HostSpecies == "" {
		return matches, nil
	}
	candidates, err := s.antibodies.ListSecondariesForSpecies(ctx, primary.HostSpecies)
	if err != nil {
		return nil, err
	}

	for _, sec := range candidates {
		specific, ok := isotypeMatches(sec.TargetIsotype, primary.Isotype)
		if !ok {
			continue
		}
		matches = append(matches, AntibodyMatch{Secondary: sec, IsotypeMatch: specific})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].IsotypeMatch && !matches[j].IsotypeMatch
	})
	return matches, nil
}

// isotypeMatches reports whether a secondary targeting target binds a
// primary of isotype, and whether that match is isotype-specific.
func isotypeMatches(target, isotype string) (specific, ok bool) {
	target = strings.TrimSpace(target)
	if target == "" || strings.EqualFold(target, genericIsotype) {
		return false, true
	}
	if isotype == "" {
		return false, false
	}
	if strings.HasPrefix(strings.ToLower(isotype), strings.ToLower(target)) {
		return true, true
	}
	return false, false
}

func (s *AntibodyService) validate(ctx context.Context, name string, zoneKey *string) error {
	if name == "" {
		return apperrors.Invalid("name", "is required")
	}
	if len(name) > maxAntibodyNameLen {
		return apperrors.Invalid("name", "must be at most %d characters", maxAntibodyNameLen)
	}
	*zoneKey = strings.TrimSpace(*zoneKey)
	if *zoneKey == "" {
		return nil
	}
	zone, err := s.zones.GetByKey(ctx, *zoneKey)
	if err != nil {
		return err
	}
	if zone == nil {
		return apperrors.Invalid("temperature_zone", "unknown zone %q", *zoneKey)
	}
	return nil
}

func normaliseSecondary(a *domain.SecondaryAntibody) {
	a.Name = strings.TrimSpace(a.Name)
	a.TargetSpecies = strings.TrimSpace(a.TargetSpecies)
	a.TargetIsotype = strings.TrimSpace(a.TargetIsotype)
}
