package application

import (
	"context"
	"fmt"

	"github.com/Maxito7/frontdesk_backend/internal/domain"
)

// GuestService manages guest records. Guests referenced by reservations are
// protected from deletion.
type GuestService struct {
	guestRepo domain.GuestRepository
	validator *Validator
}

// NewGuestService creates a new instance of the guest service
func NewGuestService(guestRepo domain.GuestRepository) *GuestService {
	return &GuestService{
		guestRepo: guestRepo,
		validator: &Validator{},
	}
}

// GetAllGuests returns every registered guest.
func (s *GuestService) GetAllGuests(ctx context.Context) ([]domain.Guest, error) {
	return s.guestRepo.GetAllGuests(ctx)
}

// GetGuestByID returns a single guest.
func (s *GuestService) GetGuestByID(ctx context.Context, id int) (*domain.Guest, error) {
	return s.guestRepo.GetGuestByID(ctx, id)
}

// FindByDocument looks up a guest by identity document number.
func (s *GuestService) FindByDocument(ctx context.Context, document string) (*domain.Guest, error) {
	if err := s.validator.ValidateDocument(document); err != nil {
		return nil, err
	}
	guest, err := s.guestRepo.FindByDocument(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("searching guest by document: %w", err)
	}
	if guest == nil {
		return nil, domain.ErrGuestNotFound
	}
	return guest, nil
}

// CreateGuest registers a new guest. Phone is required, email optional.
func (s *GuestService) CreateGuest(ctx context.Context, guest *domain.Guest) error {
	if err := s.validateGuest(guest); err != nil {
		return err
	}

	existing, err := s.guestRepo.FindByDocument(ctx, guest.Document)
	if err != nil {
		return fmt.Errorf("searching guest by document: %w", err)
	}
	if existing != nil {
		return domain.NewConflictError("guest", "a guest with document %s already exists", guest.Document)
	}

	if !guest.IsAssociated {
		guest.DiscountPercentage = 0
	}

	return s.guestRepo.CreateGuest(ctx, guest)
}

// UpdateGuest persists edits to an existing guest.
func (s *GuestService) UpdateGuest(ctx context.Context, guest *domain.Guest) error {
	if err := s.validateGuest(guest); err != nil {
		return err
	}
	if _, err := s.guestRepo.GetGuestByID(ctx, guest.ID); err != nil {
		return err
	}
	if !guest.IsAssociated {
		guest.DiscountPercentage = 0
	}
	return s.guestRepo.UpdateGuest(ctx, guest)
}

// DeleteGuest removes a guest, refusing while any reservation references
// them.
func (s *GuestService) DeleteGuest(ctx context.Context, id int) error {
	referenced, err := s.guestRepo.HasReservations(ctx, id)
	if err != nil {
		return fmt.Errorf("checking guest references: %w", err)
	}
	if referenced {
		return domain.NewConflictError("guest", "guest %d has reservations and cannot be deleted", id)
	}
	return s.guestRepo.DeleteGuest(ctx, id)
}

func (s *GuestService) validateGuest(guest *domain.Guest) error {
	if err := s.validator.ValidateName(guest.FirstName, "firstName"); err != nil {
		return err
	}
	if err := s.validator.ValidateName(guest.LastName, "lastName"); err != nil {
		return err
	}
	if err := s.validator.ValidatePhone(guest.Phone); err != nil {
		return err
	}
	if guest.Email != "" {
		if err := s.validator.ValidateEmail(guest.Email); err != nil {
			return err
		}
	}
	if err := s.validator.ValidateDocument(guest.Document); err != nil {
		return err
	}
	if guest.DiscountPercentage < 0 || guest.DiscountPercentage > 100 {
		return domain.NewValidationError("discountPercentage", "discount must be between 0 and 100")
	}
	return nil
}
