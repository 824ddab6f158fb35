package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"battery_analysis/internal/logger"
	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

// RegisterParams describes a new battery and its owner.
type RegisterParams struct {
	Owner         string
	Type          string
	NominalCharge float64
}

type RegistrationService struct {
	users     repository.Users
	batteries repository.Batteries
	presets   Presets
	log       *logger.Logger
}

func NewRegistrationService(users repository.Users, batteries repository.Batteries, presets Presets, log *logger.Logger) *RegistrationService {
	if presets == nil {
		presets = DefaultPresets()
	}
	return &RegistrationService{users: users, batteries: batteries, presets: presets, log: log}
}

func validateRegistration(p RegisterParams) (RegisterParams, error) {
	p.Owner = strings.TrimSpace(p.Owner)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	switch {
	case p.Owner == "":
		return p, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	case p.Type == "":
		return p, fmt.Errorf("%w: battery type is required", ErrInvalidInput)
	case !(p.NominalCharge > 0) || math.IsInf(p.NominalCharge, 0):
		return p, fmt.Errorf("%w: nominal charge must be a positive number", ErrInvalidInput)
	}
	return p, nil
}

// Register creates the owner on first use and a battery carrying the
// parameter preset of its type.
func (s *RegistrationService) Register(ctx context.Context, p RegisterParams) (models.Battery, error) {
	p, err := validateRegistration(p)
	if err != nil {
		return models.Battery{}, err
	}

	u, err := s.users.GetByName(ctx, p.Owner)
	if err != nil {
		return models.Battery{}, err
	}
	var userID int
	if u != nil {
		userID = u.ID
	} else {
		if userID, err = s.users.Create(ctx, p.Owner); err != nil {
			return models.Battery{}, err
		}
	}

	b := models.Battery{
		UserID:        userID,
		Type:          p.Type,
		NominalCharge: p.NominalCharge,
		Parameters:    s.presets.For(p.Type),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	if b.ID, err = s.batteries.Create(ctx, b); err != nil {
		return models.Battery{}, err
	}

	if s.log != nil {
		s.log.Infow("battery_registered", "battery_id", b.ID, "owner", p.Owner, "type", b.Type, "model", b.Parameters.Model)
	}
	return b, nil
}

// Get returns one battery. Missing batteries map to ErrBatteryNotFound.
func (s *RegistrationService) Get(ctx context.Context, id int) (models.Battery, error) {
	b, err := s.batteries.Get(ctx, id)
	if err != nil {
		return models.Battery{}, mapNotFound(err)
	}
	return b, nil
}

func (s *RegistrationService) List(ctx context.Context) ([]models.Battery, error) {
	return s.batteries.List(ctx)
}

// Summary returns how many batteries of each type are registered.
func (s *RegistrationService) Summary(ctx context.Context) ([]models.TypeCount, error) {
	return s.batteries.CountByType(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrBatteryNotFound, err)
	}
	return err
}
