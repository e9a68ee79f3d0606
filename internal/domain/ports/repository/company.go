package repository

import (
	"context"

	"client-portal-provisioning/internal/domain/model"
)

// CompanyRepository and ClientRepository are read-only views over rows owned
// by the excluded CRUD layer. Existence checks only; never mutated here.

type CompanyRepository interface {
	FindByID(ctx context.Context, qx Tx, id string) (*model.Company, error)
}

type ClientRepository interface {
	FindByID(ctx context.Context, qx Tx, id string) (*model.Client, error)
}
