// Package repomanager wires repository constructors and database migrations
// behind one factory interface so services can be assembled against either
// PostgreSQL or test fakes.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/duochat/internal/dbx"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/messages"
	"github.com/dmitrijs2005/duochat/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Messages(db dbx.DBTX) messages.Repository
}
