package services

import (
	"context"

	"billmart/internal/common"
	"billmart/internal/models"
	"billmart/internal/repositories"

	"github.com/google/uuid"
)

type ClientService interface {
	CreateClient(ctx context.Context, businessID uuid.UUID, client *models.Client) error
	GetClient(ctx context.Context, businessID, clientID uuid.UUID) (*models.Client, error)
	UpdateClient(ctx context.Context, businessID uuid.UUID, client *models.Client) error
	DeleteClient(ctx context.Context, businessID, clientID uuid.UUID) error
	ListClients(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientService struct {
	clientRepo repositories.ClientRepository
}

func NewClientService(clientRepo repositories.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func validateClient(client *models.Client) error {
	if err := common.ValidateRequiredString(client.Name, "name"); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(client.Email, "email", 254); err != nil {
		return err
	}
	if err := common.ValidateOptionalString(client.Phone, "phone", 30); err != nil {
		return err
	}
	return common.ValidateOptionalString(client.Address, "address", 500)
}

func (s *clientService) CreateClient(ctx context.Context, businessID uuid.UUID, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.BusinessID = businessID
	return s.clientRepo.Create(ctx, client)
}

func (s *clientService) GetClient(ctx context.Context, businessID, clientID uuid.UUID) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, businessID, clientID)
}

func (s *clientService) UpdateClient(ctx context.Context, businessID uuid.UUID, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	client.BusinessID = businessID
	return s.clientRepo.Update(ctx, client)
}

func (s *clientService) DeleteClient(ctx context.Context, businessID, clientID uuid.UUID) error {
	return s.clientRepo.Delete(ctx, businessID, clientID)
}

func (s *clientService) ListClients(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.clientRepo.List(ctx, businessID, limit, offset)
}
