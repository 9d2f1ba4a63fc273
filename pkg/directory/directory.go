package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/duxnet-project/duxnet/pkg/duxerrors"
	"github.com/duxnet-project/duxnet/pkg/localdb"
	"github.com/duxnet-project/duxnet/pkg/model"
	"github.com/duxnet-project/duxnet/pkg/reputation"
)

// Directory is the registry of advertised services.
type Directory struct {
	store  localdb.LocalDB
	ledger *reputation.Ledger
}

func NewDirectory(store localdb.LocalDB, ledger *reputation.Ledger) *Directory {
	return &Directory{
		store:  store,
		ledger: ledger,
	}
}

type RegisterRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    model.Currency  `json:"currency"`
	ProviderDID string          `json:"provider_did"`
}

func (r RegisterRequest) validate() error {
	var result *multierror.Error
	if strings.TrimSpace(r.Name) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("service name is required"))
	}
	if strings.TrimSpace(r.Description) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("service description is required"))
	}
	if !r.Price.IsPositive() {
		result = multierror.Append(result, duxerrors.NewInvalidInput("service price must be positive, got %s", r.Price))
	}
	if !r.Currency.IsSupported() {
		result = multierror.Append(result, duxerrors.NewInvalidInput("unsupported currency: %q", r.Currency))
	}
	if strings.TrimSpace(r.ProviderDID) == "" {
		result = multierror.Append(result, duxerrors.NewInvalidInput("provider DID is required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return duxerrors.NewInvalidInput("%s", err.Error())
	}
	return nil
}

// Register validates and persists a new service, snapshotting the provider's
// current reputation score.
func (d *Directory) Register(ctx context.Context, request RegisterRequest) (model.Service, error) {
	if err := request.validate(); err != nil {
		return model.Service{}, err
	}

	service := model.Service{
		ID:              uuid.NewString(),
		Name:            request.Name,
		Description:     request.Description,
		Price:           request.Price,
		Currency:        request.Currency,
		ProviderDID:     request.ProviderDID,
		ReputationScore: d.ledger.Get(ctx, request.ProviderDID),
		Active:          true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := d.store.AddService(ctx, service); err != nil {
		return model.Service{}, err
	}

	log.Ctx(ctx).Debug().
		Str("ServiceID", service.ID).
		Str("Provider", service.ProviderDID).
		Msgf("registered service %q", service.Name)
	return service, nil
}

// Search returns active services whose name or description contains the
// query, case-insensitively. Results come back in registration order, which
// makes repeated searches deterministic.
func (d *Directory) Search(ctx context.Context, query string) ([]model.Service, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, duxerrors.NewInvalidInput("search query is required")
	}
	needle := strings.ToLower(query)

	services, err := d.store.ListServices(ctx, localdb.ServiceQuery{})
	if err != nil {
		return nil, err
	}

	matches := []model.Service{}
	for _, service := range services {
		if strings.Contains(strings.ToLower(service.Name), needle) ||
			strings.Contains(strings.ToLower(service.Description), needle) {
			matches = append(matches, service)
		}
	}
	return matches, nil
}

// Get resolves a service by id, including deactivated ones.
func (d *Directory) Get(ctx context.Context, id string) (model.Service, error) {
	return d.store.GetService(ctx, id)
}

// Deactivate hides a service from search without deleting it.
func (d *Directory) Deactivate(ctx context.Context, id string) error {
	return d.store.UpdateService(ctx, id, func(service *model.Service) error {
		service.Active = false
		return nil
	})
}

// RefreshReputation re-reads the provider's score into the service snapshot.
func (d *Directory) RefreshReputation(ctx context.Context, id string) error {
	return d.store.UpdateService(ctx, id, func(service *model.Service) error {
		service.ReputationScore = d.ledger.Get(ctx, service.ProviderDID)
		return nil
	})
}
