package repositories

import (
	"context"
	"errors"

	"billmart/internal/common"
	"billmart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientRepo struct {
	db DB
}

func NewClientRepo(db DB) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, business_id, name, email, phone, address, created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(&client.ID, &client.BusinessID, &client.Name, &client.Email, &client.Phone, &client.Address, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, business_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, client.ID, client.BusinessID, client.Name, client.Email, client.Phone, client.Address)
	return err
}

func (r *clientRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE business_id = $1 AND id = $2`
	client, err := scanClient(r.db.QueryRow(ctx, query, businessID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return client, err
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE business_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, client.Name, client.Email, client.Phone, client.Address, client.BusinessID, client.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *clientRepo) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE business_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
