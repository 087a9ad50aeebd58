package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const listingCacheKey = "tickets:all"

// ListingCache is an optional read-through cache for ticket listings.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]domain.Ticket, bool)
	Set(ctx context.Context, key string, tickets []domain.Ticket)
	Invalidate(ctx context.Context, key string)
}

// TicketService applies the authorization and lifecycle rules for
// tickets. Every operation takes an already-authenticated Principal and
// decides the outcome as a single short-circuiting result: once an error
// is returned, no later step has run.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	assets     repository.AssetRepository
	cache      ListingCache
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	AssetRepo  repository.AssetRepository
	Cache      ListingCache
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. Owner name and
// email are never part of the input; they are snapshotted from the
// verified identity record.
type TicketCreateInput struct {
	Subject string
	Message string
	AssetID *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		assets:     deps.AssetRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new ticket for the principal. Any authenticated caller
// may create a ticket; an asset reference must resolve at creation time.
func (s *TicketService) Create(ctx context.Context, principal *auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	details := map[string]any{}
	if strings.TrimSpace(input.Subject) == "" {
		details["subject"] = "subject is required"
	}
	if strings.TrimSpace(input.Message) == "" {
		details["message"] = "message is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket payload", details)
	}

	if input.AssetID != nil && *input.AssetID != "" {
		if _, err := s.assets.GetByID(ctx, *input.AssetID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": *input.AssetID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	user, err := s.users.GetByID(ctx, principal.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid user")
		}
		return nil, apperrors.MapError(err)
	}

	assetID := input.AssetID
	if assetID != nil && *assetID == "" {
		assetID = nil
	}

	ticket := &domain.Ticket{
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		AssetID:   assetID,
		Status:    domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{SubjectID: principal.SubjectID, Role: principal.Role},
		Payload: events.TicketCreatedPayload{
			Subject:   ticket.Subject,
			AssetID:   ticket.AssetID,
			UserEmail: ticket.UserEmail,
		},
	})
	return ticket, nil
}

// ListAll returns every ticket. Support only; the caller's role must
// have been confirmed against the identity store.
func (s *TicketService) ListAll(ctx context.Context, principal *auth.Principal) ([]domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if principal.Role != domain.RoleSupport {
		return nil, apperrors.NewForbidden("Support role needed")
	}

	if cached, ok := s.cachedListing(ctx); ok {
		return cached, nil
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	s.cacheListing(ctx, tickets)
	return tickets, nil
}

// GetByID fetches a ticket subject to visibility rules: Support reads
// any ticket, everyone else only open ones. An absent ticket is reported
// as not found before any visibility check.
func (s *TicketService) GetByID(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if principal.Role != domain.RoleSupport && ticket.Status != domain.TicketStatusOpen {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// Resolve transitions a ticket to resolved. Support only. The transition
// is a monotone flag flip: resolving an already-resolved ticket succeeds
// and leaves the record unchanged in effect.
func (s *TicketService) Resolve(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if principal.Role != domain.RoleSupport {
		return nil, apperrors.NewForbidden("Support privileges required")
	}

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusResolved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	if current.Status != domain.TicketStatusResolved {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResolved,
			TicketID: updated.ID,
			Actor:    events.Actor{SubjectID: principal.SubjectID, Role: principal.Role},
			Payload: events.TicketResolvedPayload{
				OldStatus: current.Status,
				NewStatus: updated.Status,
			},
		})
	}
	return updated, nil
}

// ListByAsset returns every ticket referencing the asset. Any role may
// call it, but the caller's identity must still resolve in the store.
func (s *TicketService) ListByAsset(ctx context.Context, principal *auth.Principal, assetID string) ([]domain.Ticket, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	tickets, err := s.tickets.ListByAsset(ctx, assetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

func (s *TicketService) cachedListing(ctx context.Context) ([]domain.Ticket, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, listingCacheKey)
}

func (s *TicketService) cacheListing(ctx context.Context, tickets []domain.Ticket) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, listingCacheKey, tickets)
}

func (s *TicketService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, listingCacheKey)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
