package model

import "time"

// Company and Client are owned by the CRUD layer outside this subsystem.
// Provisioning reads them only to verify existence; it never mutates them.

type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	DeletedAt *time.Time // soft delete; non-nil means gone for provisioning
}

func (c *Company) Exists() bool { return c != nil && c.DeletedAt == nil }

type Client struct {
	ID        string
	CompanyID string
	Name      string
	Email     string
	CreatedAt time.Time
}
